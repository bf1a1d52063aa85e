package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/handlers/listings"
)

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://cdn.local/photos/listings/l-1/a.jpg", ObjectURL("http://cdn.local/", "photos", "/listings/l-1/a.jpg"))
}

func TestParseEndpoint(t *testing.T) {
	assert.Equal(t, "minio:9000", parseEndpoint("http://minio:9000"))
	assert.Equal(t, "minio:9000", parseEndpoint("minio:9000"))
}

func TestNewPhotoStoreRequiresBucket(t *testing.T) {
	_, err := NewPhotoStore(Config{Endpoint: "minio:9000"}, nil)
	require.Error(t, err)
}

func TestUnconfiguredRejectsUploads(t *testing.T) {
	_, err := Unconfigured{}.Upload(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, listings.ErrPhotoStorageUnavailable)
}
