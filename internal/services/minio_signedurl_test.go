package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// La signature est calculée localement : la région fixée évite tout appel réseau
func newTestSigner(t *testing.T) *MinioImageSigner {
	t.Helper()
	client, err := minio.New("minio.local:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Secure: false,
		Region: "us-east-1",
	})
	require.NoError(t, err)
	return NewMinioImageSigner(client, "products", 10*time.Minute, zap.NewNop())
}

func TestSignImage(t *testing.T) {
	signer := newTestSigner(t)

	tests := []struct {
		name       string
		ref        string
		wantSigned bool
		wantPath   string
	}{
		{name: "bare key", ref: "mugs/blue.png", wantSigned: true, wantPath: "/products/mugs/blue.png"},
		{name: "leading slash", ref: "/mugs/blue.png", wantSigned: true, wantPath: "/products/mugs/blue.png"},
		{name: "bucket url", ref: "http://minio.local:9000/products/mugs/red.png", wantSigned: true, wantPath: "/products/mugs/red.png"},
		{name: "external url", ref: "https://images.stripe.com/x.png"},
		{name: "same host other bucket", ref: "http://minio.local:9000/avatars/a.png"},
		{name: "empty", ref: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := signer.SignImage(context.Background(), tt.ref)
			if !tt.wantSigned {
				assert.Equal(t, tt.ref, got)
				return
			}
			assert.True(t, strings.HasPrefix(got, "http://minio.local:9000"+tt.wantPath+"?"), got)
			assert.Contains(t, got, "X-Amz-Signature=")
			assert.Contains(t, got, "X-Amz-Expires=600")
		})
	}
}
