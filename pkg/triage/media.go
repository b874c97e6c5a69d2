package triage

import (
	"encoding/base64"

	"aivaidya-be/pkg/llm"
)

const (
	MaxImages       = 3
	MaxImageBytes   = 8 * 1024 * 1024
	DefaultMIMEType = "image/jpeg"
)

// Image is one uploaded blob as received at the transport boundary.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

// EncodeImages turns up to limit images into inline parts, in order. Extra
// images are dropped, not rejected. A limit <= 0 means MaxImages.
func EncodeImages(images []Image, limit int) []llm.Part {
	if limit <= 0 {
		limit = MaxImages
	}
	if len(images) > limit {
		images = images[:limit]
	}

	parts := make([]llm.Part, 0, len(images))
	for _, img := range images {
		mimeType := img.MIMEType
		if mimeType == "" {
			mimeType = DefaultMIMEType
		}
		parts = append(parts, llm.Part{
			InlineData: &llm.InlineData{
				MIMEType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	return parts
}
