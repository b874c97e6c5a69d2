package triage

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeImages(n int) []Image {
	images := make([]Image, n)
	for i := range images {
		images[i] = Image{Name: fmt.Sprintf("img%d.png", i), MIMEType: "image/png", Data: []byte{byte(i), 0xff}}
	}
	return images
}

func TestEncodeImagesCapsAtLimit(t *testing.T) {
	for n := 0; n <= 6; n++ {
		parts := EncodeImages(makeImages(n), MaxImages)
		assert.Len(t, parts, min(n, MaxImages), "n=%d", n)
	}
}

func TestEncodeImagesPreservesOrderAndEncodes(t *testing.T) {
	images := makeImages(4)
	parts := EncodeImages(images, 0)

	require.Len(t, parts, 3)
	for i, part := range parts {
		require.NotNil(t, part.InlineData)
		assert.Empty(t, part.Text)
		assert.Equal(t, "image/png", part.InlineData.MIMEType)
		decoded, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		require.NoError(t, err)
		assert.Equal(t, images[i].Data, decoded)
	}
}

func TestEncodeImagesDefaultsMIMEType(t *testing.T) {
	parts := EncodeImages([]Image{{Data: []byte("x")}}, MaxImages)
	require.Len(t, parts, 1)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	assert.Equal(t, "eA==", parts[0].InlineData.Data)
}
