// Package media decodes uploaded photo data URIs and produces bounded
// JPEG thumbnails for gallery rendering.
package media

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	apperrors "github.com/hungduong/loveanniversary/internal/errors"
)

const (
	// ThumbnailMaxWidth and ThumbnailMaxHeight bound the generated
	// thumbnail; aspect ratio is preserved.
	ThumbnailMaxWidth  = 400
	ThumbnailMaxHeight = 400

	thumbnailQuality = 80
)

// IsDataURI reports whether a photo URL is an inline image data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/")
}

// DecodeDataURI decodes an inline image data URI into an image. The
// returned string is the decoded format name (png, jpeg, webp, gif).
func DecodeDataURI(uri string) (image.Image, string, error) {
	if !IsDataURI(uri) {
		return nil, "", apperrors.New(apperrors.ErrMediaDecode, "not an image data URI")
	}

	idx := strings.Index(uri, ",")
	if idx < 0 {
		return nil, "", apperrors.New(apperrors.ErrMediaDecode, "malformed data URI")
	}
	meta, payload := uri[:idx], uri[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", apperrors.New(apperrors.ErrMediaDecode, "data URI payload is not base64")
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrMediaDecode, "failed to decode data URI payload", err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrMediaDecode, "failed to decode image", err)
	}
	return img, format, nil
}

// ThumbnailDataURI decodes an inline photo and returns a JPEG thumbnail
// data URI fitting within the thumbnail bounds.
func ThumbnailDataURI(uri string) (string, error) {
	img, _, err := DecodeDataURI(uri)
	if err != nil {
		return "", err
	}

	thumb := imaging.Fit(img, ThumbnailMaxWidth, ThumbnailMaxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return "", apperrors.Wrap(apperrors.ErrMediaDecode, "failed to encode thumbnail", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
