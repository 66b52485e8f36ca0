package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/saulo-duarte/studio-ops/internal/config"
	"github.com/saulo-duarte/studio-ops/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMinioStore_Unconfigured(t *testing.T) {
	store, err := document.NewMinioStore(config.StorageSettings{})
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestMinioStore_PresignGet(t *testing.T) {
	store, err := document.NewMinioStore(config.StorageSettings{
		Endpoint:  "localhost:9000",
		AccessKey: "access",
		SecretKey: "secret-key-1234",
		Bucket:    "studio-docs",
		Region:    "us-east-1",
	})
	require.NoError(t, err)
	require.NotNil(t, store)

	u, err := store.PresignGet(context.Background(), "briefs/acme.pdf", "acme.pdf", 10*time.Minute)
	require.NoError(t, err)

	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/studio-docs/briefs/acme.pdf", u.Path)
	q := u.Query()
	assert.Equal(t, "600", q.Get("X-Amz-Expires"))
	assert.Contains(t, q.Get("response-content-disposition"), "acme.pdf")
	assert.NotEmpty(t, q.Get("X-Amz-Signature"))
}
