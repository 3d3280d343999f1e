package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImageDataURI(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	raw, contentType, ext, err := DecodeImageDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, payload, raw)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, "png", ext)
}

func TestDecodeImageDataURIRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a data URI", "https://example.com/a.png"},
		{"missing base64 marker", "data:image/png,abcd"},
		{"broken payload", "data:image/png;base64,%%%"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := DecodeImageDataURI(tt.data)
			assert.ErrorIs(t, err, ErrInvalidImageData)
		})
	}
}
