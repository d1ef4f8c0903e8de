package domain

import "strings"

// FileUpload is one candidate file handed over the upload boundary.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// IsPDF filters upload candidates the way the uploader does: by declared
// content type, or by extension when the client sent none.
func (u FileUpload) IsPDF() bool {
	if u.ContentType == "application/pdf" {
		return true
	}
	return u.ContentType == "" && strings.HasSuffix(strings.ToLower(u.Name), ".pdf")
}
