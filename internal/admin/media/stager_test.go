package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageFiles(t *testing.T, n int) []products.ImageFile {
	t.Helper()
	data := pngBytes(t, 64, 48)
	files := make([]products.ImageFile, 0, n)
	for i := 0; i < n; i++ {
		files = append(files, products.ImageFile{Name: fmt.Sprintf("img-%d.png", i), ContentType: "image/png", Data: data})
	}
	return files
}

func TestThumbnailDownscales(t *testing.T) {
	t.Parallel()

	thumb, err := Thumbnail(pngBytes(t, 800, 400), 100)
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format)
	require.Equal(t, 100, img.Bounds().Dx())
	require.Equal(t, 50, img.Bounds().Dy())

	_, err = Thumbnail([]byte("not an image"), 100)
	require.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestStagerEnforcesLimitPerTarget(t *testing.T) {
	t.Parallel()

	previews := NewMemoryPreviews("/admin")
	stager := NewStager(previews, WithThumbnailSize(32))
	ctx := context.Background()
	scope := Scope{Session: "s1", ProductID: "p1"}

	staged, err := stager.Stage(ctx, scope, "Black", imageFiles(t, 8))
	require.NoError(t, err)
	require.Len(t, staged, 8)
	require.Equal(t, "/admin/previews/"+staged[0].ID, staged[0].PreviewURL)
	require.Equal(t, "image/png", staged[0].ContentType)

	_, err = stager.Stage(ctx, scope, "Black", imageFiles(t, 3))
	require.ErrorIs(t, err, ErrTooManyImages)
	require.Equal(t, "Maximum 10 images allowed per color", UserMessage(err, "Black"))
	require.Equal(t, "Maximum 10 images allowed for default images", UserMessage(err, DefaultTarget))
	require.Len(t, stager.Staged(scope, "Black"), 8)
	require.Equal(t, 8, previews.Len())

	_, err = stager.Stage(ctx, scope, "Navy", imageFiles(t, 10))
	require.NoError(t, err, "limit is per target")
}

func TestStagerRejectsWholeBatchOnBadImage(t *testing.T) {
	t.Parallel()

	previews := NewMemoryPreviews("/admin")
	stager := NewStager(previews, WithThumbnailSize(32))
	files := append(imageFiles(t, 2), products.ImageFile{Name: "notes.txt", Data: []byte("hello")})

	_, err := stager.Stage(context.Background(), Scope{Session: "s", ProductID: "p"}, DefaultTarget, files)
	require.ErrorIs(t, err, ErrUnsupportedImage)
	require.Zero(t, previews.Len(), "previews of the rejected batch are released")
}

func TestStagerReleasesPreviewsExactlyOnce(t *testing.T) {
	t.Parallel()

	previews := &countingPreviews{MemoryPreviews: NewMemoryPreviews("/admin")}
	stager := NewStager(previews, WithThumbnailSize(32))
	ctx := context.Background()
	scope := Scope{Session: "s1", ProductID: "p1"}
	other := Scope{Session: "s2", ProductID: "p1"}

	staged, err := stager.Stage(ctx, scope, "Black", imageFiles(t, 3))
	require.NoError(t, err)
	_, err = stager.Stage(ctx, scope, DefaultTarget, imageFiles(t, 2))
	require.NoError(t, err)
	_, err = stager.Stage(ctx, other, DefaultTarget, imageFiles(t, 1))
	require.NoError(t, err)

	require.NoError(t, stager.Remove(ctx, scope, "Black", staged[0].ID))
	require.ErrorIs(t, stager.Remove(ctx, scope, "Black", staged[0].ID), ErrPreviewNotFound)

	files := stager.Files(scope, "Black")
	require.Len(t, files, 2)
	require.Equal(t, "img-1.png", files[0].Name)

	_, err = stager.Replace(ctx, scope, "Black", imageFiles(t, 1))
	require.NoError(t, err)
	require.Equal(t, []string{"Black", DefaultTarget}, stager.Targets(scope))

	require.NoError(t, stager.ReleaseSession(ctx, "s1"))
	require.Empty(t, stager.Targets(scope))
	require.Equal(t, 1, previews.Len())

	require.NoError(t, stager.Close(ctx))
	require.Zero(t, previews.Len())

	for id, n := range previews.released {
		require.Equal(t, 1, n, "preview %s released %d times", id, n)
	}
	require.Len(t, previews.released, 7)
}

func TestStagerReplaceKeepsImagesWhenBatchIsOversized(t *testing.T) {
	t.Parallel()

	previews := NewMemoryPreviews("/admin")
	stager := NewStager(previews, WithThumbnailSize(32))
	ctx := context.Background()
	scope := Scope{Session: "s1", ProductID: "p1"}

	_, err := stager.Stage(ctx, scope, "Black", imageFiles(t, 4))
	require.NoError(t, err)

	_, err = stager.Replace(ctx, scope, "Black", imageFiles(t, 11))
	require.ErrorIs(t, err, ErrTooManyImages)
	require.Len(t, stager.Staged(scope, "Black"), 4)

	replaced, err := stager.Replace(ctx, scope, "Black", imageFiles(t, 10))
	require.NoError(t, err)
	require.Len(t, replaced, 10)
	require.Equal(t, 10, previews.Len(), "the replaced previews are released")
}

func TestStagerSweepsIdleScopes(t *testing.T) {
	t.Parallel()

	previews := &countingPreviews{MemoryPreviews: NewMemoryPreviews("/admin")}
	stager := NewStager(previews, WithThumbnailSize(32), WithIdleTimeout(time.Hour))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	stager.now = func() time.Time { return now }
	ctx := context.Background()
	abandoned := Scope{Session: "s1", ProductID: "p1"}
	active := Scope{Session: "s2", ProductID: "p1"}

	_, err := stager.Stage(ctx, abandoned, "Black", imageFiles(t, 3))
	require.NoError(t, err)
	_, err = stager.Stage(ctx, active, "Black", imageFiles(t, 1))
	require.NoError(t, err)

	now = now.Add(40 * time.Minute)
	require.Len(t, stager.Staged(active, "Black"), 1)

	now = now.Add(30 * time.Minute)
	require.NoError(t, stager.SweepIdle(ctx))
	require.Empty(t, stager.Staged(abandoned, "Black"))
	require.Len(t, stager.Staged(active, "Black"), 1, "recently viewed scopes survive")
	require.Equal(t, 1, previews.Len())

	now = now.Add(2 * time.Hour)
	_, err = stager.Stage(ctx, abandoned, DefaultTarget, imageFiles(t, 1))
	require.NoError(t, err)
	require.Empty(t, stager.Targets(active), "staging sweeps other idle scopes")
	require.Len(t, previews.released, 4)
}

func TestUserMessageForOversizedImage(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("huge.png: %w", ErrImageTooLarge)
	require.Equal(t, "Each image should not exceed 10MB", UserMessage(err, "Black"))
}

func TestCloudinaryPreviews(t *testing.T) {
	t.Parallel()

	api := &fakeUploader{}
	previews, err := NewCloudinaryPreviews(api, "steth/previews")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := previews.Publish(ctx, "pv-1", []byte("thumb"))
	require.NoError(t, err)
	require.Equal(t, "https://res.cloudinary.example/steth/previews/pv-1.jpg", url)
	require.Equal(t, "steth/previews", api.uploads[0].Folder)
	require.Equal(t, "pv-1", api.uploads[0].PublicID)

	_, ok := previews.Open("pv-1")
	require.False(t, ok)

	require.NoError(t, previews.Release(ctx, "pv-1"))
	require.NoError(t, previews.Release(ctx, "pv-1"))
	require.Equal(t, []string{"steth/previews/pv-1"}, api.destroyed)
}

type countingPreviews struct {
	*MemoryPreviews
	mu       sync.Mutex
	released map[string]int
}

func (c *countingPreviews) Release(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.released == nil {
		c.released = make(map[string]int)
	}
	c.released[id]++
	c.mu.Unlock()
	return c.MemoryPreviews.Release(ctx, id)
}

type fakeUploader struct {
	uploads   []uploader.UploadParams
	destroyed []string
}

func (f *fakeUploader) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploads = append(f.uploads, params)
	publicID := params.Folder + "/" + params.PublicID
	return &uploader.UploadResult{
		PublicID:  publicID,
		SecureURL: "https://res.cloudinary.example/" + publicID + ".jpg",
	}, nil
}

func (f *fakeUploader) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	f.destroyed = append(f.destroyed, params.PublicID)
	return &uploader.DestroyResult{Result: "ok"}, nil
}
