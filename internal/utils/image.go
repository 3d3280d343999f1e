package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidImageData = errors.New("image must be a base64 data URI")

// DecodeImageDataURI unpacks an embedded encoded image of the form
// "data:image/<ext>;base64,<payload>" into its raw bytes. The returned
// extension is taken from the media type ("png", "jpeg", ...).
func DecodeImageDataURI(data string) (raw []byte, contentType string, ext string, err error) {
	if !strings.HasPrefix(data, "data:image") {
		return nil, "", "", ErrInvalidImageData
	}

	meta, payload, found := strings.Cut(data, ";base64,")
	if !found {
		return nil, "", "", ErrInvalidImageData
	}

	contentType = strings.TrimPrefix(meta, "data:")
	ext = contentType[strings.LastIndex(contentType, "/")+1:]
	if ext == "" {
		return nil, "", "", ErrInvalidImageData
	}

	raw, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidImageData, decodeErr)
	}
	return raw, contentType, ext, nil
}
