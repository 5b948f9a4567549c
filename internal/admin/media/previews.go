package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// PreviewStore hosts preview thumbnails while images are staged.
type PreviewStore interface {
	// Publish stores a thumbnail under id and returns the URL to render.
	Publish(ctx context.Context, id string, thumbnail []byte) (string, error)
	// Release frees the hosted preview. Releasing an unknown id is not an error.
	Release(ctx context.Context, id string) error
	// Open returns a preview served by the admin itself.
	Open(id string) ([]byte, bool)
}

// MemoryPreviews keeps thumbnails in process memory and serves them from
// {basePath}/previews/{id}.
type MemoryPreviews struct {
	mu       sync.RWMutex
	basePath string
	items    map[string][]byte
}

// NewMemoryPreviews constructs a MemoryPreviews rooted at basePath.
func NewMemoryPreviews(basePath string) *MemoryPreviews {
	return &MemoryPreviews{
		basePath: strings.TrimRight(basePath, "/"),
		items:    make(map[string][]byte),
	}
}

// Publish stores the thumbnail.
func (m *MemoryPreviews) Publish(_ context.Context, id string, thumbnail []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id] = bytes.Clone(thumbnail)
	return m.basePath + "/previews/" + id, nil
}

// Release drops the thumbnail.
func (m *MemoryPreviews) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, id)
	return nil
}

// Open returns the stored thumbnail.
func (m *MemoryPreviews) Open(id string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.items[id]
	return data, ok
}

// Len reports how many previews are held.
func (m *MemoryPreviews) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// CloudinaryUploader is the subset of the Cloudinary upload API used for previews.
type CloudinaryUploader interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryPreviews hosts thumbnails on Cloudinary.
type CloudinaryPreviews struct {
	api    CloudinaryUploader
	folder string

	mu        sync.Mutex
	publicIDs map[string]string
}

// NewCloudinaryPreviews wraps an upload API. folder groups all previews.
func NewCloudinaryPreviews(api CloudinaryUploader, folder string) (*CloudinaryPreviews, error) {
	if api == nil {
		return nil, errors.New("media: cloudinary uploader is required")
	}
	if strings.TrimSpace(folder) == "" {
		folder = "admin-previews"
	}
	return &CloudinaryPreviews{
		api:       api,
		folder:    folder,
		publicIDs: make(map[string]string),
	}, nil
}

// NewCloudinaryClient builds a client from a cloudinary:// URL or explicit credentials.
func NewCloudinaryClient(cloudinaryURL, cloudName, apiKey, apiSecret string) (*cloudinary.Cloudinary, error) {
	if strings.TrimSpace(cloudinaryURL) != "" {
		cld, err := cloudinary.NewFromURL(cloudinaryURL)
		if err != nil {
			return nil, fmt.Errorf("media: cloudinary url: %w", err)
		}
		return cld, nil
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("media: cloudinary credentials: %w", err)
	}
	return cld, nil
}

// Publish uploads the thumbnail and returns its secure URL.
func (c *CloudinaryPreviews) Publish(ctx context.Context, id string, thumbnail []byte) (string, error) {
	unique := false
	overwrite := true
	result, err := c.api.Upload(ctx, bytes.NewReader(thumbnail), uploader.UploadParams{
		Folder:         c.folder,
		PublicID:       id,
		ResourceType:   "image",
		UniqueFilename: &unique,
		Overwrite:      &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("media: upload preview: %w", err)
	}
	if result == nil || result.SecureURL == "" {
		return "", errors.New("media: upload preview: no URL returned")
	}

	c.mu.Lock()
	c.publicIDs[id] = result.PublicID
	c.mu.Unlock()
	return result.SecureURL, nil
}

// Release destroys the hosted preview.
func (c *CloudinaryPreviews) Release(ctx context.Context, id string) error {
	c.mu.Lock()
	publicID, ok := c.publicIDs[id]
	delete(c.publicIDs, id)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	if _, err := c.api.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("media: destroy preview %s: %w", publicID, err)
	}
	return nil
}

// Open always reports false; Cloudinary serves its own URLs.
func (c *CloudinaryPreviews) Open(string) ([]byte, bool) {
	return nil, false
}
