package ui

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	custommw "github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	producttpl "github.com/husnain417/Steth-admin-Panel/internal/admin/templates/products"
)

const (
	maxUploadMemory = 32 << 20

	msgBadHandoff     = "The product information for this step is missing or invalid. Please start again from the product list."
	msgDefaultSuccess = "Default images uploaded successfully"
)

// ImageSteps lists the image-upload steps, each served under /products/{productID}/{step}.
var ImageSteps = []string{producttpl.StepImages, producttpl.StepUpdateImages}

// imageStep is the decoded hand-off of one image-upload request.
type imageStep struct {
	name        string
	productID   string
	productName string
	raw         string
	colors      []products.HandoffColor
}

func (s imageStep) allows(target string) bool {
	if target == media.DefaultTarget {
		return s.name == producttpl.StepImages
	}
	for _, c := range s.colors {
		if c.Name == target {
			return true
		}
	}
	return false
}

func (s imageStep) param() string {
	if s.name == producttpl.StepImages {
		return products.ProductDataParam
	}
	return products.NewColorsParam
}

func (s imageStep) pageURL(basePath string) string {
	q := url.Values{s.param(): {s.raw}}
	return helpers.JoinPath(basePath, "/products/"+url.PathEscape(s.productID)+"/"+s.name) + "?" + q.Encode()
}

func decodeImageStep(r *http.Request, step string) (imageStep, error) {
	s := imageStep{name: step, productID: chi.URLParam(r, "productID")}
	s.raw = r.FormValue(s.param())

	if step == producttpl.StepImages {
		handoff, err := products.DecodeProductHandoff(s.raw)
		if err != nil {
			return s, err
		}
		if handoff.ID != s.productID {
			return s, fmt.Errorf("%w: product id does not match the URL", products.ErrMalformedHandoff)
		}
		s.productName = handoff.Name
		s.colors = handoff.Colors
		return s, nil
	}

	colors, err := products.DecodeNewColors(s.raw)
	if err != nil {
		return s, err
	}
	s.colors = colors
	return s, nil
}

func (h *Handlers) beginImageStep(w http.ResponseWriter, r *http.Request, step string) (requestContext, imageStep, bool) {
	rc, ok := h.begin(w, r)
	if !ok {
		return rc, imageStep{}, false
	}
	s, err := decodeImageStep(r, step)
	if err != nil {
		observability.FromContext(r.Context()).Warn("media: malformed hand-off", zap.String("step", step), zap.Error(err))
		data := producttpl.HandoffErrorData{
			Message:  msgBadHandoff,
			BackHref: helpers.JoinPath(rc.basePath, "/products"),
		}
		render(w, r, producttpl.HandoffErrorPage(rc.page(), data), http.StatusBadRequest)
		return rc, s, false
	}
	return rc, s, true
}

func (h *Handlers) scope(rc requestContext, s imageStep) media.Scope {
	return media.Scope{Session: rc.session.ID(), ProductID: s.productID}
}

// ImagesPage renders an image-upload step.
func (h *Handlers) ImagesPage(step string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, s, ok := h.beginImageStep(w, r, step)
		if !ok {
			return
		}
		data := h.imagesData(rc, s)
		render(w, r, producttpl.ImagesPage(rc.page(), helpers.JoinPath(rc.basePath, "/products"), data), http.StatusOK)
	}
}

// ImagesStage adds a batch of files to one target. The batch is accepted
// or rejected as a whole.
func (h *Handlers) ImagesStage(step string) http.HandlerFunc {
	return h.stageImages(step, h.stager.Stage)
}

// ImagesReplace discards the staged images of one target and stages a new
// batch in their place.
func (h *Handlers) ImagesReplace(step string) http.HandlerFunc {
	return h.stageImages(step, h.stager.Replace)
}

type stageFunc func(context.Context, media.Scope, string, []products.ImageFile) ([]media.StagedImage, error)

func (h *Handlers) stageImages(step string, stage stageFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil && err != http.ErrNotMultipart {
			http.Error(w, "The upload could not be read.", http.StatusBadRequest)
			return
		}
		rc, s, ok := h.beginImageStep(w, r, step)
		if !ok {
			return
		}
		target, ok := requireTarget(w, r, s)
		if !ok {
			return
		}

		var headers []*multipart.FileHeader
		if r.MultipartForm != nil {
			headers = r.MultipartForm.File["images"]
		}
		files, err := readImageFiles(headers)
		if err == nil {
			_, err = stage(r.Context(), h.scope(rc, s), target, files)
		}
		if err != nil {
			observability.FromContext(r.Context()).Info("media: stage rejected",
				zap.String("product_id", s.productID), zap.String("target", target), zap.Error(err))
			h.respondImages(w, r, rc, s, "error", media.UserMessage(err, target), true)
			return
		}
		h.respondImages(w, r, rc, s, "", "", false)
	}
}

// ImagesRemove discards one staged image.
func (h *Handlers) ImagesRemove(step string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, s, ok := h.beginImageStep(w, r, step)
		if !ok {
			return
		}
		target, ok := requireTarget(w, r, s)
		if !ok {
			return
		}
		if err := h.stager.Remove(r.Context(), h.scope(rc, s), target, r.FormValue("preview")); err != nil {
			h.respondImages(w, r, rc, s, "error", media.UserMessage(err, target), true)
			return
		}
		h.respondImages(w, r, rc, s, "", "", false)
	}
}

// ImagesUpload sends the staged originals of one target to the backend and
// releases their previews.
func (h *Handlers) ImagesUpload(step string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, s, ok := h.beginImageStep(w, r, step)
		if !ok {
			return
		}
		target, ok := requireTarget(w, r, s)
		if !ok {
			return
		}
		ctx := r.Context()
		logger := observability.FromContext(ctx)
		scope := h.scope(rc, s)

		files := h.stager.Files(scope, target)
		if len(files) == 0 {
			h.respondImages(w, r, rc, s, "error", media.UserMessage(media.ErrNoImages, target), true)
			return
		}

		var err error
		if target == media.DefaultTarget {
			err = h.products.UploadDefaultImages(ctx, rc.token, s.productID, files)
		} else {
			err = h.products.UploadColorImages(ctx, rc.token, s.productID, target, files)
		}
		if err != nil {
			logger.Warn("media: upload failed", zap.String("product_id", s.productID), zap.String("target", target), zap.Error(err))
			h.respondImages(w, r, rc, s, "error", products.UserMessage(err), true)
			return
		}
		if err := h.stager.Clear(ctx, scope, target); err != nil {
			logger.Warn("media: release after upload failed", zap.String("target", target), zap.Error(err))
		}
		logger.Info("media: images uploaded",
			zap.String("product_id", s.productID), zap.String("target", target), zap.Int("count", len(files)))

		msg := msgDefaultSuccess
		if target != media.DefaultTarget {
			msg = target + " images uploaded successfully"
		}
		h.respondImages(w, r, rc, s, "success", msg, false)
	}
}

// ImagesFinish ends the step, releasing anything still staged, and returns to the list.
func (h *Handlers) ImagesFinish(step string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, s, ok := h.beginImageStep(w, r, step)
		if !ok {
			return
		}
		if err := h.stager.ReleaseScope(r.Context(), h.scope(rc, s)); err != nil {
			observability.FromContext(r.Context()).Warn("media: release on finish failed", zap.String("product_id", s.productID), zap.Error(err))
		}
		custommw.Redirect(w, r, helpers.JoinPath(rc.basePath, "/products"))
	}
}

// Preview serves a thumbnail held in memory by the preview store.
func (h *Handlers) Preview(w http.ResponseWriter, r *http.Request) {
	data, ok := h.stager.Previews().Open(chi.URLParam(r, "previewID"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

func (h *Handlers) imagesData(rc requestContext, s imageStep) producttpl.ImagesPageData {
	scope := h.scope(rc, s)
	return producttpl.BuildImagesPageData(rc.basePath, s.name, s.productID, s.productName, s.raw, s.colors,
		func(target string) []media.StagedImage {
			return h.stager.Staged(scope, target)
		})
}

func (h *Handlers) respondImages(w http.ResponseWriter, r *http.Request, rc requestContext, s imageStep, kind, msg string, failed bool) {
	data := h.imagesData(rc, s).WithMessage(kind, msg)
	if custommw.IsHTMXRequest(r.Context()) {
		render(w, r, producttpl.ImageStep(data), http.StatusOK)
		return
	}
	if !failed {
		rc.session.SetFlash(kind, msg)
		custommw.Redirect(w, r, s.pageURL(rc.basePath))
		return
	}
	render(w, r, producttpl.ImagesPage(rc.page(), helpers.JoinPath(rc.basePath, "/products"), data), http.StatusUnprocessableEntity)
}

func requireTarget(w http.ResponseWriter, r *http.Request, s imageStep) (string, bool) {
	target := r.FormValue("target")
	if !s.allows(target) {
		http.Error(w, "Unknown image target", http.StatusBadRequest)
		return "", false
	}
	return target, true
}

func readImageFiles(headers []*multipart.FileHeader) ([]products.ImageFile, error) {
	files := make([]products.ImageFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > media.MaxImageBytes {
			return nil, fmt.Errorf("%s: %w", fh.Filename, media.ErrImageTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		if len(data) > media.MaxImageBytes {
			return nil, fmt.Errorf("%s: %w", fh.Filename, media.ErrImageTooLarge)
		}
		files = append(files, products.ImageFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
