// Package assets uploads profile images to an external asset host.
package assets

import (
	"context"
	"errors"
	"io"
)

// ProfileImageSize is the edge length of the square profile image, in pixels.
const ProfileImageSize = 200

// ErrNotConfigured is returned by Disabled for every upload.
var ErrNotConfigured = errors.New("asset host not configured")

// Disabled rejects uploads; it is used when no asset backend is configured.
type Disabled struct{}

// UploadProfileImage always fails with ErrNotConfigured.
func (Disabled) UploadProfileImage(context.Context, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}
