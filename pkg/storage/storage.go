// Package storage archives JSON payloads in Azure Blob Storage and lets
// callers browse them by key prefix.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/adammoore/maldreth-infrastructure-interactions-sub000/pkg/lifecycle"
)

// MaxListCap is the largest page a List call may request.
const MaxListCap int32 = 500

// System is an archive of blobs addressed by slash-separated keys.
type System interface {
	// Start registers a startup hook that ensures the container exists.
	Start(lc *lifecycle.Coordinator) error
	// Upload writes reader to key, replacing any existing blob.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// List returns one page of blobs under prefix, continuing from marker.
	List(ctx context.Context, prefix, marker string, maxResults int32) (*ListResult, error)
	// Find returns blob metadata. Returns ErrNotFound if the blob does not exist.
	Find(ctx context.Context, key string) (*Blob, error)
	// Download streams a blob. The caller must close Body.
	Download(ctx context.Context, key string) (*Download, error)
}

// Blob describes one archived object.
type Blob struct {
	Key           string     `json:"key"`
	ContentType   string     `json:"content_type,omitempty"`
	ContentLength int64      `json:"content_length"`
	LastModified  *time.Time `json:"last_modified,omitempty"`
}

// ListResult is one page of a prefix listing.
type ListResult struct {
	Blobs      []Blob `json:"blobs"`
	NextMarker string `json:"next_marker,omitempty"`
}

// Download is an open blob stream.
type Download struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ParseMaxResults parses a page size query value. Empty selects fallback;
// values above MaxListCap are clamped.
func ParseMaxResults(raw string, fallback int32) (int32, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: max_results must be a positive integer", ErrInvalidListSize)
	}
	return min(int32(n), MaxListCap), nil
}

type azure struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// New creates an Azure-backed archive. No request is made until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		logger:    logger.With("system", "archive", "container", cfg.ContainerName),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup(func() {
		_, err := a.client.CreateContainer(lc.Context(), a.container, nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("archive container initialization failed", "error", err)
			return
		}
		a.logger.Info("archive container ready")
	})
	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}

func (a *azure) List(ctx context.Context, prefix, marker string, maxResults int32) (*ListResult, error) {
	if strings.Contains(prefix, "..") {
		return nil, ErrInvalidKey
	}

	opts := &azblob.ListBlobsFlatOptions{MaxResults: &maxResults}
	if prefix != "" {
		opts.Prefix = &prefix
	}
	if marker != "" {
		opts.Marker = &marker
	}

	result := &ListResult{Blobs: []Blob{}}

	pager := a.client.NewListBlobsFlatPager(a.container, opts)
	if !pager.More() {
		return result, nil
	}

	page, err := pager.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs %q: %w", prefix, err)
	}

	if page.Segment != nil {
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			b := Blob{Key: *item.Name}
			if p := item.Properties; p != nil {
				b.ContentType = deref(p.ContentType)
				b.LastModified = utc(p.LastModified)
				if p.ContentLength != nil {
					b.ContentLength = *p.ContentLength
				}
			}
			result.Blobs = append(result.Blobs, b)
		}
	}
	result.NextMarker = deref(page.NextMarker)

	return result, nil
}

func (a *azure) Find(ctx context.Context, key string) (*Blob, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	props, err := a.client.ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blob properties %s: %w", key, err)
	}

	b := &Blob{
		Key:          key,
		ContentType:  deref(props.ContentType),
		LastModified: utc(props.LastModified),
	}
	if props.ContentLength != nil {
		b.ContentLength = *props.ContentLength
	}
	return b, nil
}

func (a *azure) Download(ctx context.Context, key string) (*Download, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, a.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s: %w", key, err)
	}

	d := &Download{Body: resp.Body, ContentType: deref(resp.ContentType)}
	if resp.ContentLength != nil {
		d.ContentLength = *resp.ContentLength
	}
	return d, nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
