// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, covering the
// operations the mirror feature needs to copy a documentation bundle between a
// bucket and the local asset directory. Both AWS S3 and self-hosted MinIO are
// supported. The interface is mocked in core/storage/mocks for unit tests.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	exists, err := client.BucketExists(ctx, cfg.Storage.Bucket)
package storage
