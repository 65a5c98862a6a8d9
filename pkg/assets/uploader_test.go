package assets

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCloudinary struct {
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeCloudinary) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, f.err
}

func TestCloudinaryUploader(t *testing.T) {
	fake := &fakeCloudinary{result: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/v1/user_profiles/a.jpg"}}
	u := &CloudinaryUploader{api: fake, folder: "user_profiles"}

	url, err := u.UploadProfileImage(context.Background(), strings.NewReader("img"), "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/user_profiles/a.jpg", url)
	assert.Equal(t, "user_profiles", fake.params.Folder)
	assert.Equal(t, ProfileTransformation, fake.params.Transformation)
}

func TestCloudinaryUploader_Errors(t *testing.T) {
	u := &CloudinaryUploader{api: &fakeCloudinary{err: errors.New("timeout")}}
	_, err := u.UploadProfileImage(context.Background(), strings.NewReader("img"), "a.jpg")
	assert.Error(t, err)

	u = &CloudinaryUploader{api: &fakeCloudinary{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}}
	_, err = u.UploadProfileImage(context.Background(), strings.NewReader("img"), "a.jpg")
	assert.ErrorContains(t, err, "Invalid image file")
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, halves(320, 240)))

	fake := &fakePutter{}
	u := &S3Uploader{client: fake, bucket: "avatars", folder: "user_profiles", baseURL: "https://cdn.example.com"}

	url, err := u.UploadProfileImage(context.Background(), &src, "me.png")
	require.NoError(t, err)

	key := aws.ToString(fake.input.Key)
	assert.True(t, strings.HasPrefix(key, "user_profiles/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Equal(t, "https://cdn.example.com/"+key, url)
	assert.Equal(t, "avatars", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(len(fake.body)), aws.ToInt64(fake.input.ContentLength))
}

func TestS3Uploader_RejectsNonImage(t *testing.T) {
	fake := &fakePutter{}
	u := &S3Uploader{client: fake, bucket: "avatars"}

	_, err := u.UploadProfileImage(context.Background(), strings.NewReader("nope"), "x.txt")
	assert.Error(t, err)
	assert.Nil(t, fake.input)
}

func TestS3Uploader_PutFails(t *testing.T) {
	var src bytes.Buffer
	require.NoError(t, png.Encode(&src, halves(10, 10)))

	u := &S3Uploader{client: &fakePutter{err: errors.New("access denied")}, bucket: "avatars"}
	_, err := u.UploadProfileImage(context.Background(), &src, "me.png")
	assert.ErrorContains(t, err, "access denied")
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", publicBaseURL(S3Config{PublicBaseURL: "https://cdn.example.com/"}))
	assert.Equal(t, "http://localhost:9000/avatars", publicBaseURL(S3Config{Endpoint: "http://localhost:9000", Bucket: "avatars", UsePathStyle: true}))
	assert.Equal(t, "https://avatars.s3.eu-west-1.amazonaws.com", publicBaseURL(S3Config{Bucket: "avatars", Region: "eu-west-1"}))
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.UploadProfileImage(context.Background(), strings.NewReader(""), "a.png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
