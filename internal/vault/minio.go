package vault

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"examtrack/internal/exams"
)

// MinioVault stores snapshots in a bucket on a MinIO (or other
// S3-compatible) server.
type MinioVault struct {
	name   string
	bucket string
	client *minio.Client
}

var _ exams.Vault = (*MinioVault)(nil)

// NewMinioVault connects to endpoint and creates the bucket if it is missing.
func NewMinioVault(name, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioVault, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioVault{name: name, bucket: bucket, client: client}, nil
}

func (v *MinioVault) PutSnapshot(ctx context.Context, name string, r io.Reader, size int64) error {
	if err := checkName(name); err != nil {
		return err
	}
	_, err := v.client.PutObject(ctx, v.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

func (v *MinioVault) GetSnapshot(ctx context.Context, name string, w io.Writer) error {
	obj, err := v.client.GetObject(ctx, v.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	defer obj.Close()

	// GetObject is lazy; a missing key only surfaces on first read.
	if _, err := io.Copy(w, obj); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
		}
		return fmt.Errorf("read object: %w", err)
	}
	return nil
}

func (v *MinioVault) ListSnapshots(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range v.client.ListObjects(ctx, v.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", obj.Err)
		}
		names = append(names, obj.Key)
	}
	sort.Strings(names)
	return names, nil
}

func (v *MinioVault) ValidateSetup(ctx context.Context) error {
	exists, err := v.client.BucketExists(ctx, v.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", v.bucket)
	}
	return nil
}
