// Package s3 stores property images in an S3-compatible bucket through
// minio-go. It is the STORAGE_DRIVER=s3 alternative to the REST storage API.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/JonMunkholm/leadsync/internal/config"
	"github.com/JonMunkholm/leadsync/internal/core"
)

// Store is one bucket on an S3-compatible endpoint.
type Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// New creates a store from the storage config. No request is made.
func New(cfg config.StorageConfig) (*Store, error) {
	if cfg.S3Endpoint == "" {
		return nil, &core.ConfigError{
			Field:       "S3_ENDPOINT",
			Problem:     "S3_ENDPOINT is required when STORAGE_DRIVER=s3",
			Remediation: "set S3_ENDPOINT=https://<host> or switch STORAGE_DRIVER to rest",
		}
	}

	// Parse endpoint URL to extract host
	u, err := url.Parse(cfg.S3Endpoint)
	if err != nil {
		return nil, &core.ConfigError{Field: "S3_ENDPOINT", Problem: "invalid endpoint URL", Err: err}
	}
	endpoint := u.Host
	if endpoint == "" {
		endpoint = cfg.S3Endpoint
	}

	useSSL := cfg.S3UseSSL
	switch u.Scheme {
	case "https":
		useSSL = true
	case "http":
		useSSL = false
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: useSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	publicBase := cfg.PublicURL
	if publicBase == "" {
		scheme := "http"
		if useSSL {
			scheme = "https"
		}
		publicBase = scheme + "://" + endpoint + "/" + cfg.Bucket
	}

	return &Store{
		client:     client,
		bucket:     cfg.Bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Put uploads body as name unless the object already exists, in which case
// the error wraps core.ErrConflict.
func (s *Store) Put(ctx context.Context, name string, body []byte, contentType string) error {
	_, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{})
	if err == nil {
		return &core.RemoteError{Status: 409, Code: "ObjectExists", Body: name + " already exists", Kind: core.ErrConflict}
	}
	if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		return classifyError(err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return classifyError(err)
	}
	return nil
}

// List returns every object name under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, classifyError(obj.Err)
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Delete removes the named objects. The first per-object failure is returned.
func (s *Store) Delete(ctx context.Context, names []string) error {
	objectsCh := make(chan minio.ObjectInfo, len(names))
	for _, n := range names {
		objectsCh <- minio.ObjectInfo{Key: n}
	}
	close(objectsCh)

	var errs []error
	for res := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.ObjectName, classifyError(res.Err)))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete %d of %d objects failed: %w", len(errs), len(names), errs[0])
	}
	return nil
}

// PublicURL returns the path-style public URL of an object.
func (s *Store) PublicURL(name string) string {
	return s.publicBase + "/" + name
}

// classifyError converts minio-go errors to *core.RemoteError.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	resp := minio.ToErrorResponse(err)
	if resp.Code == "" {
		return err
	}

	re := &core.RemoteError{Status: resp.StatusCode, Code: resp.Code, Body: resp.Message}
	switch resp.Code {
	case "NoSuchBucket":
		re.Kind = core.ErrRelationMissing
	case "PreconditionFailed":
		re.Kind = core.ErrConflict
	}
	return re
}
