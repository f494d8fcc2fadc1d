package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// MinioImageSigner transforme les clés d'objets du bucket en URLs signées.
// Les URLs externes (CDN, Stripe...) sont renvoyées telles quelles.
type MinioImageSigner struct {
	client   *minio.Client
	bucket   string
	duration time.Duration
	log      *zap.Logger
}

func NewMinioImageSigner(client *minio.Client, bucket string, duration time.Duration, log *zap.Logger) *MinioImageSigner {
	if duration <= 0 {
		duration = 15 * time.Minute
	}
	return &MinioImageSigner{client: client, bucket: bucket, duration: duration, log: log}
}

func (s *MinioImageSigner) SignImage(ctx context.Context, ref string) string {
	key, ok := s.objectKey(ref)
	if !ok {
		return ref
	}

	presignedURL, err := s.client.PresignedGetObject(ctx, s.bucket, key, s.duration, make(url.Values))
	if err != nil {
		s.log.Warn("⚠️ URL signée non générée", zap.String("key", key), zap.Error(err))
		return ref
	}
	return presignedURL.String()
}

// objectKey nettoie l'URL complète pour ne garder que le chemin relatif au bucket
func (s *MinioImageSigner) objectKey(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		return strings.TrimPrefix(ref, "/"), true
	}

	u, err := url.Parse(ref)
	if err != nil || u.Host != s.client.EndpointURL().Host {
		return "", false
	}
	key, found := strings.CutPrefix(strings.TrimPrefix(u.Path, "/"), s.bucket+"/")
	return key, found && key != ""
}
