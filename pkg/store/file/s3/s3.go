// Package s3 implements the per-tenant file store on Amazon S3 or
// S3-compatible storage.
//
// Key design: root/tenantID/name maps to the object key
// "<keyPrefix><tenantID>/<name>" in a single bucket. The tenant directory is
// represented by a zero-byte marker object "<keyPrefix><tenantID>/", so an
// empty tenant directory survives listings and existence checks the way it
// does on a real filesystem.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/broker/names"
	"github.com/marmos91/brokerd/pkg/store/file"
)

// S3Store implements file.Store over an S3 bucket.
//
// S3 has no atomic create-if-absent, so the create/append precondition
// checks are a HeadObject followed by a PutObject. The TOCTOU window between
// the two matches the broker's accepted concurrency model (last-writer-wins,
// low-contention use).
type S3Store struct {
	client    *awss3.Client
	bucket    string
	keyPrefix string
}

// S3StoreConfig contains configuration for the S3 file store.
type S3StoreConfig struct {
	// Client is the configured S3 client
	Client *awss3.Client

	// Bucket is the S3 bucket name (must already exist)
	Bucket string

	// KeyPrefix is an optional prefix for all object keys,
	// e.g. "brokerd/" yields keys like "brokerd/tenant-a/notes.txt"
	KeyPrefix string
}

// NewS3Store creates a new S3-backed file store.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.Client == nil {
		return nil, errors.New("S3 client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &S3Store{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: prefix,
	}, nil
}

// Root returns the store location in s3://bucket/prefix form.
func (s *S3Store) Root() string {
	return "s3://" + s.bucket + "/" + strings.TrimSuffix(s.keyPrefix, "/")
}

// resolveKey validates the segments and composes the object key. name may be
// "" to address the tenant marker/prefix.
func (s *S3Store) resolveKey(tenantID, name string) (string, error) {
	if tenantID == "" || strings.ContainsAny(tenantID, `/\`) {
		return "", &file.StoreError{Code: file.ErrInvalidPath, Message: "invalid tenant segment", Path: tenantID}
	}
	if strings.ContainsAny(name, `/\`) {
		return "", &file.StoreError{Code: file.ErrInvalidPath, Message: "invalid name segment", Path: name}
	}
	if !names.IsValidPath(names.ComposePath(s.Root(), tenantID, name)) {
		return "", &file.StoreError{Code: file.ErrIO, Message: "composed path failed validation"}
	}

	if name == "" {
		return s.keyPrefix + tenantID + "/", nil
	}
	return s.keyPrefix + tenantID + "/" + name, nil
}

// head returns object metadata, or nil when the object doesn't exist.
func (s *S3Store) head(ctx context.Context, key string) (*awss3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: key}
	}
	return out, nil
}

// hasPrefix reports whether any object exists under the given key prefix.
func (s *S3Store) hasPrefix(ctx context.Context, prefix string) (bool, error) {
	out, err := s.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return false, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: prefix}
	}
	return len(out.Contents) > 0, nil
}

// Exists reports whether the named object — or any object under the tenant
// prefix when name is "" — exists.
func (s *S3Store) Exists(ctx context.Context, tenantID, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key, err := s.resolveKey(tenantID, name)
	if err != nil {
		return false, err
	}

	if name == "" {
		return s.hasPrefix(ctx, key)
	}

	out, err := s.head(ctx, key)
	if err != nil {
		return false, err
	}
	return out != nil, nil
}

// Stat returns metadata for the named object or the tenant prefix.
func (s *S3Store) Stat(ctx context.Context, tenantID, name string) (*file.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, err := s.resolveKey(tenantID, name)
	if err != nil {
		return nil, err
	}

	if name == "" {
		exists, err := s.hasPrefix(ctx, key)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, &file.StoreError{Code: file.ErrNotFound, Message: "item not found", Path: key}
		}
		return &file.Info{Name: tenantID, Type: file.TypeDirectory}, nil
	}

	out, err := s.head(ctx, key)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &file.StoreError{Code: file.ErrNotFound, Message: "item not found", Path: key}
	}

	info := &file.Info{Name: name, Type: file.TypeRegular}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		// S3 records a single timestamp per object.
		info.CreationTime = *out.LastModified
		info.LastAccessed = *out.LastModified
		info.LastModified = *out.LastModified
	}
	return info, nil
}

// MakeDirectory creates the tenant's marker object. Idempotent.
func (s *S3Store) MakeDirectory(ctx context.Context, tenantID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := s.resolveKey(tenantID, "")
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: key}
	}
	return nil
}

// ListChildren returns the objects under the tenant prefix, excluding the
// directory marker.
func (s *S3Store) ListChildren(ctx context.Context, tenantID string) ([]file.Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix, err := s.resolveKey(tenantID, "")
	if err != nil {
		return nil, err
	}

	infos := []file.Info{}
	paginator := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: prefix}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue // directory marker
			}
			info := file.Info{
				Name: path.Base(key),
				Type: file.TypeRegular,
			}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.CreationTime = *obj.LastModified
				info.LastAccessed = *obj.LastModified
				info.LastModified = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// ReadText returns the object's content as a string.
func (s *S3Store) ReadText(ctx context.Context, tenantID, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := s.resolveKey(tenantID, name)
	if err != nil {
		return "", err
	}

	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return "", &file.StoreError{Code: file.ErrNotFound, Message: "file not found", Path: key}
		}
		return "", &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: key}
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: key}
	}
	return string(data), nil
}

// WriteText writes data according to mode and returns the bytes written.
//
// Appending reads the current content and rewrites the whole object; S3 has
// no append primitive.
func (s *S3Store) WriteText(ctx context.Context, tenantID, name, data string, mode command.WriteMode) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	key, err := s.resolveKey(tenantID, name)
	if err != nil {
		return 0, err
	}

	body := data
	switch mode {
	case command.WriteModeCreate:
		out, err := s.head(ctx, key)
		if err != nil {
			return 0, err
		}
		if out != nil {
			return 0, &file.StoreError{Code: file.ErrExists, Message: "file already exists", Path: key}
		}
	case command.WriteModeAppend, command.WriteModeAppendOrCreate:
		existing, err := s.ReadText(ctx, tenantID, name)
		if err != nil {
			if file.IsNotFound(err) {
				if mode == command.WriteModeAppend {
					return 0, &file.StoreError{Code: file.ErrPrecondition, Message: "file does not exist", Path: key}
				}
				existing = ""
			} else {
				return 0, err
			}
		}
		body = existing + data
	case command.WriteModeOverwrite:
		// No precondition.
	default:
		return 0, &file.StoreError{Code: file.ErrIO, Message: "unknown write mode " + string(mode), Path: key}
	}

	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(body),
	})
	if err != nil {
		return 0, &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: key}
	}
	return len(data), nil
}

// Remove deletes the named object.
func (s *S3Store) Remove(ctx context.Context, tenantID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, err := s.resolveKey(tenantID, name)
	if err != nil {
		return err
	}

	out, err := s.head(ctx, key)
	if err != nil {
		return err
	}
	if out == nil {
		return &file.StoreError{Code: file.ErrNotFound, Message: "item not found", Path: key}
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: key}
	}
	return nil
}

// RemoveDirectory deletes the tenant prefix (or a named child, which on S3
// can only be the marker-less equivalent of an empty directory).
func (s *S3Store) RemoveDirectory(ctx context.Context, tenantID, name string, recursive bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if name != "" {
		// Nested directories are never created through this API; a named
		// child directory cannot exist on this backend.
		return &file.StoreError{Code: file.ErrNotFound, Message: "directory not found", Path: name}
	}

	prefix, err := s.resolveKey(tenantID, "")
	if err != nil {
		return err
	}

	children, err := s.ListChildren(ctx, tenantID)
	if err != nil {
		return err
	}

	exists, err := s.hasPrefix(ctx, prefix)
	if err != nil {
		return err
	}
	if !exists {
		return &file.StoreError{Code: file.ErrNotFound, Message: "directory not found", Path: prefix}
	}

	if !recursive && len(children) > 0 {
		return &file.StoreError{Code: file.ErrNotEmpty, Message: "directory not empty", Path: prefix}
	}

	for _, child := range children {
		if err := s.Remove(ctx, tenantID, child.Name); err != nil && !file.IsNotFound(err) {
			return err
		}
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(prefix),
	})
	if err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: prefix}
	}
	return nil
}

// Rename copies from → to, then deletes the source.
func (s *S3Store) Rename(ctx context.Context, tenantID, from, to string, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fromKey, err := s.resolveKey(tenantID, from)
	if err != nil {
		return err
	}
	toKey, err := s.resolveKey(tenantID, to)
	if err != nil {
		return err
	}

	src, err := s.head(ctx, fromKey)
	if err != nil {
		return err
	}
	if src == nil {
		return &file.StoreError{Code: file.ErrNotFound, Message: "source not found", Path: fromKey}
	}

	if !overwrite {
		dst, err := s.head(ctx, toKey)
		if err != nil {
			return err
		}
		if dst != nil {
			return &file.StoreError{Code: file.ErrExists, Message: "target already exists", Path: toKey}
		}
	}

	_, err = s.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + fromKey),
		Key:        aws.String(toKey),
	})
	if err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: fromKey}
	}

	_, err = s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fromKey),
	})
	if err != nil {
		return &file.StoreError{Code: file.ErrIO, Message: err.Error(), Path: fromKey}
	}
	return nil
}
