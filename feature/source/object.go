package source

import (
	"context"
	"fmt"

	"datarec/core/frame"
	"datarec/core/storage"

	"github.com/minio/minio-go/v7"
)

// Object reads a CSV or XLSX object from a bucket.
type Object struct {
	client storage.Client
	Bucket string
	Spec   Spec
}

// NewObject creates an object source.
func NewObject(client storage.Client, bucket string, spec Spec) *Object {
	return &Object{client: client, Bucket: bucket, Spec: spec}
}

// Load implements Source.
func (s *Object) Load(ctx context.Context) (*frame.Table, error) {
	format, err := formatOf(s.Spec.Format, s.Spec.Object)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.Bucket, s.Spec.Object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s/%s: %w", s.Bucket, s.Spec.Object, err)
	}
	defer obj.Close()

	if format == "xlsx" {
		return decodeXLSX(ctx, obj, s.Spec)
	}
	return decodeCSV(ctx, obj, s.Spec)
}
