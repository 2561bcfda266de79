package models

import (
	"strings"
	"time"
)

// Photo is one gallery entry. URL is either a remote URL or an embedded
// data URI. Photos are kept newest-first.
type Photo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Caption      string    `json:"caption,omitempty"`
	Filename     string    `json:"filename,omitempty"`
	Size         int64     `json:"size,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// IsDataURI reports whether the photo's URL embeds the image bytes.
func (p *Photo) IsDataURI() bool {
	return strings.HasPrefix(p.URL, "data:")
}

// Clone returns a copy of the photo.
func (p *Photo) Clone() *Photo {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}
