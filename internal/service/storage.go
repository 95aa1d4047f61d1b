package service

import "context"

// ObjectStoreInterface is the slice of the blob store the services need:
// course images and generated exports. client.S3Client satisfies it.
type ObjectStoreInterface interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Presign(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}
