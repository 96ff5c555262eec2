package uploads

import "mime/multipart"

type UploadBookPayload struct {
	FormFiles map[string]*multipart.FileHeader `json:"-"`
}
