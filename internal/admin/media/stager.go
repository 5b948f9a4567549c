// Package media stages product images for upload and manages their previews.
package media

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
)

// MaxImagesPerTarget caps the images staged for one color or the default set.
const MaxImagesPerTarget = 10

// MaxImageBytes caps the size of one staged original.
const MaxImageBytes = 10 << 20

// DefaultTarget names the default image set of a product.
const DefaultTarget = "default"

// DefaultIdleTimeout is how long a scope may sit untouched before its
// staged images are released.
const DefaultIdleTimeout = 30 * time.Minute

var (
	// ErrTooManyImages indicates a batch that would exceed MaxImagesPerTarget.
	ErrTooManyImages = errors.New("media: too many images")
	// ErrNoImages indicates an empty batch or an upload with nothing staged.
	ErrNoImages = errors.New("media: no images")
	// ErrUnsupportedImage indicates a file that could not be decoded as an image.
	ErrUnsupportedImage = errors.New("media: unsupported image")
	// ErrImageTooLarge indicates a file over MaxImageBytes.
	ErrImageTooLarge = errors.New("media: image too large")
	// ErrPreviewNotFound indicates an unknown staged image.
	ErrPreviewNotFound = errors.New("media: staged image not found")
)

// UserMessage converts a staging error for target into text for the image page.
func UserMessage(err error, target string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooManyImages):
		if target == DefaultTarget {
			return fmt.Sprintf("Maximum %d images allowed for default images", MaxImagesPerTarget)
		}
		return fmt.Sprintf("Maximum %d images allowed per color", MaxImagesPerTarget)
	case errors.Is(err, ErrNoImages):
		return "Please select at least one image"
	case errors.Is(err, ErrImageTooLarge):
		return fmt.Sprintf("Each image should not exceed %dMB", MaxImageBytes>>20)
	case errors.Is(err, ErrUnsupportedImage):
		return "Only JPEG, PNG and GIF images are supported"
	case errors.Is(err, ErrPreviewNotFound):
		return "That image is no longer staged"
	default:
		return "Error uploading images. Please try again."
	}
}

// Scope groups the staged images of one product within one editing session.
type Scope struct {
	Session   string
	ProductID string
}

// StagedImage is an image waiting to be uploaded together with its preview.
type StagedImage struct {
	ID          string
	Name        string
	ContentType string
	PreviewURL  string
	Size        int
	data        []byte
}

// StagerOption customises a Stager.
type StagerOption func(*Stager)

// WithThumbnailSize overrides the preview size.
func WithThumbnailSize(px int) StagerOption {
	return func(s *Stager) {
		if px > 0 {
			s.thumbSize = px
		}
	}
}

// WithIdleTimeout overrides how long an untouched scope keeps its images.
func WithIdleTimeout(d time.Duration) StagerOption {
	return func(s *Stager) {
		if d > 0 {
			s.idle = d
		}
	}
}

// Stager holds staged images in memory until they are uploaded or discarded.
// Every preview is released exactly once: when its image is removed,
// replaced or uploaded, when its session ends, or when its scope has been
// idle for longer than the idle timeout.
type Stager struct {
	previews  PreviewStore
	thumbSize int
	idle      time.Duration
	newID     func() string
	now       func() time.Time

	mu      sync.Mutex
	sets    map[Scope]map[string][]StagedImage
	touched map[Scope]time.Time
}

// NewStager constructs a Stager publishing previews to store.
func NewStager(store PreviewStore, opts ...StagerOption) *Stager {
	s := &Stager{
		previews:  store,
		thumbSize: DefaultThumbnailSize,
		idle:      DefaultIdleTimeout,
		newID: func() string {
			return "pv-" + strings.ToLower(ulid.Make().String())
		},
		now:     time.Now,
		sets:    make(map[Scope]map[string][]StagedImage),
		touched: make(map[Scope]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Previews exposes the preview store.
func (s *Stager) Previews() PreviewStore {
	return s.previews
}

// Stage adds a batch of images to a target. The batch is accepted or
// rejected as a whole.
func (s *Stager) Stage(ctx context.Context, scope Scope, target string, files []products.ImageFile) ([]StagedImage, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if err := s.SweepIdle(ctx); err != nil {
		return nil, err
	}
	if s.count(scope, target)+len(files) > MaxImagesPerTarget {
		return nil, ErrTooManyImages
	}

	batch := make([]StagedImage, 0, len(files))
	for _, f := range files {
		thumb, err := Thumbnail(f.Data, s.thumbSize)
		if err != nil {
			s.release(ctx, batch)
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		id := s.newID()
		previewURL, err := s.previews.Publish(ctx, id, thumb)
		if err != nil {
			s.release(ctx, batch)
			return nil, err
		}
		batch = append(batch, StagedImage{
			ID:          id,
			Name:        f.Name,
			ContentType: DetectContentType(f.ContentType, f.Data),
			PreviewURL:  previewURL,
			Size:        len(f.Data),
			data:        f.Data,
		})
	}

	s.mu.Lock()
	targets := s.sets[scope]
	if targets == nil {
		targets = make(map[string][]StagedImage)
		s.sets[scope] = targets
	}
	if len(targets[target])+len(batch) > MaxImagesPerTarget {
		s.mu.Unlock()
		s.release(ctx, batch)
		return nil, ErrTooManyImages
	}
	targets[target] = append(targets[target], batch...)
	s.touched[scope] = s.now()
	s.mu.Unlock()

	return append([]StagedImage(nil), batch...), nil
}

// Replace discards the staged images of a target and stages files in their
// place. The current images are kept when the new batch is rejected up front.
func (s *Stager) Replace(ctx context.Context, scope Scope, target string, files []products.ImageFile) ([]StagedImage, error) {
	if len(files) == 0 {
		return nil, ErrNoImages
	}
	if len(files) > MaxImagesPerTarget {
		return nil, ErrTooManyImages
	}
	if err := s.Clear(ctx, scope, target); err != nil {
		return nil, err
	}
	return s.Stage(ctx, scope, target, files)
}

// Remove discards one staged image.
func (s *Stager) Remove(ctx context.Context, scope Scope, target, id string) error {
	s.mu.Lock()
	images := s.sets[scope][target]
	idx := -1
	for i, img := range images {
		if img.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrPreviewNotFound
	}
	removed := images[idx]
	s.sets[scope][target] = append(images[:idx:idx], images[idx+1:]...)
	s.touched[scope] = s.now()
	s.mu.Unlock()

	return s.previews.Release(ctx, removed.ID)
}

// Staged lists the staged images of a target in staging order. Reading a
// scope counts as activity.
func (s *Stager) Staged(scope Scope, target string) []StagedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sets[scope]; ok {
		s.touched[scope] = s.now()
	}
	return append([]StagedImage(nil), s.sets[scope][target]...)
}

// Targets lists the targets of a scope that hold staged images.
func (s *Stager) Targets(scope Scope) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for target, images := range s.sets[scope] {
		if len(images) > 0 {
			out = append(out, target)
		}
	}
	sort.Strings(out)
	return out
}

// Files returns the staged originals of a target ready for upload.
func (s *Stager) Files(scope Scope, target string) []products.ImageFile {
	staged := s.Staged(scope, target)
	files := make([]products.ImageFile, 0, len(staged))
	for _, img := range staged {
		files = append(files, products.ImageFile{Name: img.Name, ContentType: img.ContentType, Data: img.data})
	}
	return files
}

// Clear discards every staged image of a target.
func (s *Stager) Clear(ctx context.Context, scope Scope, target string) error {
	s.mu.Lock()
	images := s.sets[scope][target]
	delete(s.sets[scope], target)
	if len(s.sets[scope]) == 0 {
		delete(s.sets, scope)
		delete(s.touched, scope)
	}
	s.mu.Unlock()
	return s.release(ctx, images)
}

// ReleaseScope discards every staged image of a product in a session.
func (s *Stager) ReleaseScope(ctx context.Context, scope Scope) error {
	s.mu.Lock()
	targets := s.sets[scope]
	delete(s.sets, scope)
	delete(s.touched, scope)
	s.mu.Unlock()

	var errs []error
	for _, images := range targets {
		errs = append(errs, s.release(ctx, images))
	}
	return errors.Join(errs...)
}

// ReleaseSession discards everything staged by a session.
func (s *Stager) ReleaseSession(ctx context.Context, session string) error {
	return s.releaseWhere(ctx, func(scope Scope) bool { return scope.Session == session })
}

// SweepIdle releases the images of every scope untouched for longer than
// the idle timeout. Covers sessions that never come back to end themselves.
func (s *Stager) SweepIdle(ctx context.Context) error {
	cutoff := s.now().Add(-s.idle)
	return s.releaseWhere(ctx, func(scope Scope) bool {
		return s.touched[scope].Before(cutoff)
	})
}

// Run sweeps idle scopes every interval until ctx is done.
func (s *Stager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.idle / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.SweepIdle(ctx)
		}
	}
}

// Close releases every preview still held.
func (s *Stager) Close(ctx context.Context) error {
	return s.releaseWhere(ctx, func(Scope) bool { return true })
}

func (s *Stager) releaseWhere(ctx context.Context, match func(Scope) bool) error {
	s.mu.Lock()
	var doomed []StagedImage
	for scope, targets := range s.sets {
		if !match(scope) {
			continue
		}
		for _, images := range targets {
			doomed = append(doomed, images...)
		}
		delete(s.sets, scope)
		delete(s.touched, scope)
	}
	s.mu.Unlock()
	return s.release(ctx, doomed)
}

func (s *Stager) count(scope Scope, target string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets[scope][target])
}

func (s *Stager) release(ctx context.Context, images []StagedImage) error {
	var errs []error
	for _, img := range images {
		if err := s.previews.Release(ctx, img.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
