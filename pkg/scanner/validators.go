package scanner

type StartScanPayload struct {
	CleanupOrphaned bool `json:"cleanup_orphaned"`
}
