package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"aivaidya-be/pkg/triage"

	"github.com/gabriel-vasile/mimetype"
)

// loadImages reads image files from disk, sniffing their MIME type from content.
func loadImages(paths []string) ([]triage.Image, error) {
	images := make([]triage.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if int64(len(data)) > triage.MaxImageBytes {
			return nil, fmt.Errorf("%s is larger than %dMB", path, triage.MaxImageBytes/(1024*1024))
		}

		mt := mimetype.Detect(data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return nil, fmt.Errorf("%s does not look like an image (%s)", path, mt.String())
		}

		images = append(images, triage.Image{
			Name:     filepath.Base(path),
			MIMEType: mt.String(),
			Data:     data,
		})
	}
	return images, nil
}
