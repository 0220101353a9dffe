package storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/minio"

	appConfig "github.com/raushankrgupta/virtual-tryon/config"
)

const (
	minioUsername = "admin"
	minioPassword = "password"
	testBucket    = "tryon-test"
)

func setupMinio(t *testing.T, ctx context.Context) string {
	t.Helper()

	container, err := minio.Run(ctx,
		"minio/minio:RELEASE.2024-01-16T16-07-38Z",
		minio.WithUsername(minioUsername),
		minio.WithPassword(minioPassword),
	)
	require.NoError(t, err, "Failed to start MinIO container")
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	connStr, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	return "http://" + connStr
}

func newTestS3Store(t *testing.T, ctx context.Context, endpoint, publicBaseURL string) *S3Store {
	t.Helper()

	store, err := NewS3Store(ctx, appConfig.StorageConfig{
		Region:          "us-east-1",
		BucketName:      testBucket,
		EndpointURL:     endpoint,
		AccessKeyID:     minioUsername,
		SecretAccessKey: minioPassword,
		PublicBaseURL:   publicBaseURL,
	})
	require.NoError(t, err)
	return store
}

func TestS3Store(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	endpoint := setupMinio(t, ctx)
	store := newTestS3Store(t, ctx, endpoint, "")

	assert.Error(t, store.Ping(ctx), "bucket does not exist yet")
	_, err := store.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(testBucket)})
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))

	t.Run("upload returns a presigned path-style url", func(t *testing.T) {
		url, err := store.Upload(ctx, "user-123_1700000000000.jpg", strings.NewReader("jpeg bytes"), "image/jpeg")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(url, endpoint+"/"+testBucket+"/user-123_1700000000000.jpg?"), url)
		assert.Contains(t, url, "X-Amz-Signature=")

		res, err := http.Get(url)
		require.NoError(t, err)
		defer res.Body.Close()
		require.Equal(t, http.StatusOK, res.StatusCode)
		assert.Equal(t, "image/jpeg", res.Header.Get("Content-Type"))
		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Equal(t, "jpeg bytes", string(body))
	})

	t.Run("public base url skips signing", func(t *testing.T) {
		public := newTestS3Store(t, ctx, endpoint, "https://cdn.example/photos/")

		url, err := public.Upload(ctx, "garments/garment_1.png", strings.NewReader("png bytes"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example/photos/garments/garment_1.png", url)

		obj, err := store.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(testBucket),
			Key:    aws.String("garments/garment_1.png"),
		})
		require.NoError(t, err)
		defer obj.Body.Close()
		data, err := io.ReadAll(obj.Body)
		require.NoError(t, err)
		assert.Equal(t, "png bytes", string(data))
	})
}

func TestPublicURL_WithBaseURL(t *testing.T) {
	s := &S3Store{publicBaseURL: "https://cdn.example"}

	url, err := s.PublicURL(context.Background(), "/generated_images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/generated_images/a.png", url)
}
