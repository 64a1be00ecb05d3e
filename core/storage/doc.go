// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client with the few operations datarec needs: object
// sources download CSV and XLSX files, and the run command and HTTP API upload
// and list JSON reports. Both AWS S3 and self-hosted MinIO work.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, so storage
// interactions can be mocked in tests (see core/storage/mocks).
//
//   - BucketExists / MakeBucket: used by EnsureBucket before report uploads.
//   - PutObject: uploads a report.
//   - GetObject: streams a source object.
//   - ListObjects: lists the reports stored for a job.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, "reports", cfg.Storage.Region)
package storage
