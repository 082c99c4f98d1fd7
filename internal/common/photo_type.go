package common

import "strings"

// PhotoContentType guards what listing photos may be stored as.
type PhotoContentType string

const (
	PhotoTypeJPEG PhotoContentType = "image/jpeg"
	PhotoTypePNG  PhotoContentType = "image/png"
	PhotoTypeWebP PhotoContentType = "image/webp"
)

func (p PhotoContentType) String() string {
	return string(p)
}

func (p PhotoContentType) IsValid() bool {
	switch p {
	case PhotoTypeJPEG, PhotoTypePNG, PhotoTypeWebP:
		return true
	}
	return false
}

// DetectPhotoType normalizes a MIME type to a supported photo type.
// Unsupported types come back invalid, never a fallback.
func DetectPhotoType(mimeType string) PhotoContentType {
	mime := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return PhotoContentType(mime)
}
