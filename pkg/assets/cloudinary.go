package assets

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// ProfileTransformation is a 200x200 fill crop with automatic quality and format.
const ProfileTransformation = "c_fill,h_200,w_200/q_auto/f_auto"

// CloudinaryConfig holds Cloudinary credentials.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

type cloudinaryAPI interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryUploader uploads to Cloudinary, which applies the transform server side.
type CloudinaryUploader struct {
	api    cloudinaryAPI
	folder string
}

// NewCloudinaryUploader creates a new CloudinaryUploader.
func NewCloudinaryUploader(cfg CloudinaryConfig) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &CloudinaryUploader{api: &cld.Upload, folder: cfg.Folder}, nil
}

// UploadProfileImage uploads r and returns the secure URL of the transformed image.
func (u *CloudinaryUploader) UploadProfileImage(ctx context.Context, r io.Reader, filename string) (string, error) {
	res, err := u.api.Upload(ctx, r, uploader.UploadParams{
		Folder:         u.folder,
		Transformation: ProfileTransformation,
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload of %s failed: %w", filename, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload of %s failed: %s", filename, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload of %s returned no URL", filename)
	}
	return res.SecureURL, nil
}
