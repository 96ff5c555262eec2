package mediafile

import "bytes"

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK")
	rarMagic = []byte("Rar!")
)

// ValidateSignature checks uploaded content against the magic bytes of its
// declared file type. File types without a known signature pass permissively:
// failing closed would block legitimate uploads. Empty content always fails.
func ValidateSignature(data []byte, fileType string) bool {
	if len(data) == 0 {
		return false
	}

	switch fileType {
	case FileTypePDF:
		return bytes.HasPrefix(data, pdfMagic)
	case FileTypeEPUB, FileTypeCBZ:
		// EPUB and CBZ are ZIP containers.
		return bytes.HasPrefix(data, zipMagic)
	case FileTypeCBR:
		return bytes.HasPrefix(data, rarMagic)
	}

	return true
}
