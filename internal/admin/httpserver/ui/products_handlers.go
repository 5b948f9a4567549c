package ui

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/drafts"
	custommw "github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/observability"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	producttpl "github.com/husnain417/Steth-admin-Panel/internal/admin/templates/products"
)

const (
	msgDraftExpired   = "Your draft has expired. Please start again."
	msgProductCreated = "Product created successfully"
	msgProductUpdated = "Product updated successfully"
)

// ProductsList renders the product list. Backend failures are shown inline.
func (h *Handlers) ProductsList(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.begin(w, r)
	if !ok {
		return
	}

	summaries, err := h.products.List(r.Context(), rc.token)
	data := producttpl.BuildListPageData(rc.basePath, summaries, rbac.HasCapability(rc.user.Roles, rbac.CapProductsEdit))
	if err != nil {
		observability.FromContext(r.Context()).Warn("products: list failed", zap.Error(err))
		data.Error = products.UserMessage(err)
	}
	render(w, r, producttpl.ListPage(rc.page(), data), http.StatusOK)
}

// ProductsNew opens the create composer, resuming the session's draft when one exists.
func (h *Handlers) ProductsNew(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	key := drafts.Key{Session: rc.session.ID(), Draft: drafts.NewDraftKey}

	c, err := h.drafts.Load(ctx, key)
	if errors.Is(err, drafts.ErrNotFound) {
		c = products.NewCreateComposer(h.catalog)
		err = h.drafts.Save(ctx, key, c)
	}
	if err != nil {
		serverError(w, r, "drafts: open create draft failed", err)
		return
	}

	data := producttpl.BuildComposerData(rc.basePath, key.Draft, c)
	render(w, r, producttpl.ComposerPage(rc.page(), data), http.StatusOK)
}

// ProductsEdit opens the update composer. The draft is hydrated from the
// backend on first visit or when reset is requested.
func (h *Handlers) ProductsEdit(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	productID := chi.URLParam(r, "productID")
	if productID == "" || productID == drafts.NewDraftKey {
		http.NotFound(w, r)
		return
	}
	key := drafts.Key{Session: rc.session.ID(), Draft: productID}

	c, err := h.drafts.Load(ctx, key)
	if r.URL.Query().Get("reset") != "" || errors.Is(err, drafts.ErrNotFound) {
		rec, getErr := h.products.Get(ctx, rc.token, productID)
		switch {
		case errors.Is(getErr, products.ErrNotFound):
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		case getErr != nil:
			observability.FromContext(ctx).Warn("products: fetch for edit failed", zap.String("product_id", productID), zap.Error(getErr))
			http.Error(w, products.UserMessage(getErr), http.StatusBadGateway)
			return
		}
		c = products.NewUpdateComposer(h.catalog, rec)
		err = h.drafts.Save(ctx, key, c)
	}
	if err != nil {
		serverError(w, r, "drafts: open update draft failed", err)
		return
	}

	data := producttpl.BuildComposerData(rc.basePath, key.Draft, c)
	render(w, r, producttpl.ComposerPage(rc.page(), data), http.StatusOK)
}

// eventResult tells the renderer where a rejected event's message belongs
// and which inputs to echo back.
type eventResult struct {
	slot  string
	input producttpl.FormInput
}

// composerEvent applies exactly one operation to a loaded composer.
type composerEvent func(r *http.Request, c *products.Composer) (eventResult, error)

// handleEvent loads the draft named in the URL, applies the event, saves
// the draft and renders the composer. Events hold the draft lock so an edit
// cannot land on a draft that a running submission is about to delete.
func (h *Handlers) handleEvent(apply composerEvent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc, ok := h.begin(w, r)
		if !ok {
			return
		}
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			http.Error(w, "The form could not be read.", http.StatusBadRequest)
			return
		}
		draft := chi.URLParam(r, "draft")
		key := drafts.Key{Session: rc.session.ID(), Draft: draft}

		release, lockErr := h.drafts.Acquire(ctx, key)
		if lockErr != nil && !errors.Is(lockErr, drafts.ErrBusy) {
			serverError(w, r, "drafts: acquire draft lock failed", lockErr)
			return
		}
		if lockErr == nil {
			defer release()
		}

		c, err := h.drafts.Load(ctx, key)
		if errors.Is(err, drafts.ErrNotFound) {
			rc.session.SetFlash("error", msgDraftExpired)
			custommw.Redirect(w, r, draftPageURL(rc.basePath, draft))
			return
		}
		if err != nil {
			serverError(w, r, "drafts: load failed", err)
			return
		}
		if lockErr != nil {
			h.respondComposer(w, r, rc, draft, c, eventResult{slot: producttpl.ErrorForm}, products.ErrSubmitInProgress)
			return
		}

		res, applyErr := apply(r, c)
		if applyErr == nil {
			if err := h.drafts.Save(ctx, key, c); err != nil {
				serverError(w, r, "drafts: save failed", err)
				return
			}
		}
		h.respondComposer(w, r, rc, draft, c, res, applyErr)
	}
}

// ProductsSubmit sends the draft to the backend and moves to the next step.
// The draft lock keeps a second submission from running concurrently.
func (h *Handlers) ProductsSubmit(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	draft := chi.URLParam(r, "draft")
	key := drafts.Key{Session: rc.session.ID(), Draft: draft}

	release, lockErr := h.drafts.Acquire(ctx, key)
	if lockErr != nil && !errors.Is(lockErr, drafts.ErrBusy) {
		serverError(w, r, "drafts: acquire submission lock failed", lockErr)
		return
	}
	if lockErr == nil {
		defer release()
	}

	c, err := h.drafts.Load(ctx, key)
	if errors.Is(err, drafts.ErrNotFound) {
		rc.session.SetFlash("error", msgDraftExpired)
		custommw.Redirect(w, r, draftPageURL(rc.basePath, draft))
		return
	}
	if err != nil {
		serverError(w, r, "drafts: load failed", err)
		return
	}
	if lockErr != nil {
		h.respondComposer(w, r, rc, draft, c, eventResult{slot: producttpl.ErrorForm}, products.ErrSubmitInProgress)
		return
	}

	next, err := c.Submit(ctx, h.products, rc.token)
	if err != nil {
		logger.Warn("products: submit failed", zap.String("flow", string(c.Flow)), zap.String("draft", draft), zap.Error(err))
		h.respondComposer(w, r, rc, draft, c, eventResult{slot: producttpl.ErrorForm}, err)
		return
	}

	target, err := next.Path(rc.basePath)
	if err != nil {
		serverError(w, r, "products: build next step failed", err)
		return
	}
	if err := h.drafts.Delete(ctx, key); err != nil {
		logger.Warn("drafts: delete after submit failed", zap.String("draft", draft), zap.Error(err))
	}

	if c.Flow == products.FlowCreate {
		rc.session.SetFlash("success", msgProductCreated)
	} else {
		rc.session.SetFlash("success", msgProductUpdated)
	}
	logger.Info("products: submitted",
		zap.String("flow", string(c.Flow)),
		zap.String("product_id", next.ProductID),
		zap.String("next", string(next.Kind)),
	)
	custommw.Redirect(w, r, target)
}

// ProductsDiscard throws the draft away and returns to the list.
func (h *Handlers) ProductsDiscard(w http.ResponseWriter, r *http.Request) {
	rc, ok := h.begin(w, r)
	if !ok {
		return
	}
	draft := chi.URLParam(r, "draft")
	key := drafts.Key{Session: rc.session.ID(), Draft: draft}
	if err := h.drafts.Delete(r.Context(), key); err != nil {
		observability.FromContext(r.Context()).Warn("drafts: discard failed", zap.String("draft", draft), zap.Error(err))
	}
	custommw.Redirect(w, r, helpers.JoinPath(rc.basePath, "/products"))
}

func (h *Handlers) respondComposer(w http.ResponseWriter, r *http.Request, rc requestContext, draft string, c *products.Composer, res eventResult, err error) {
	data := producttpl.BuildComposerData(rc.basePath, draft, c)
	data.Input = res.input
	if err != nil {
		if res.slot != "" {
			data = data.WithErrorIn(res.slot, err)
		} else {
			data = data.WithError(err)
		}
	}

	if custommw.IsHTMXRequest(r.Context()) {
		render(w, r, producttpl.Composer(data), http.StatusOK)
		return
	}
	if err == nil {
		custommw.Redirect(w, r, draftPageURL(rc.basePath, draft))
		return
	}
	render(w, r, producttpl.ComposerPage(rc.page(), data), http.StatusUnprocessableEntity)
}

func draftPageURL(basePath, draft string) string {
	if draft == drafts.NewDraftKey {
		return helpers.JoinPath(basePath, "/products/new")
	}
	return helpers.JoinPath(basePath, "/products/"+url.PathEscape(draft)+"/edit")
}

// ComposerDetails replaces the descriptive fields of a draft.
func (h *Handlers) ComposerDetails(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(detailsEvent)(w, r)
}

// ComposerAddColor selects a catalog color.
func (h *Handlers) ComposerAddColor(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(addColorEvent)(w, r)
}

// ComposerAddCustomColor defines and selects a staff color.
func (h *Handlers) ComposerAddCustomColor(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(addCustomColorEvent)(w, r)
}

// ComposerRemoveColor deselects a color together with its inventory rows.
func (h *Handlers) ComposerRemoveColor(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(removeColorEvent)(w, r)
}

// ComposerAddInventory records stock for a (color, size) pair.
func (h *Handlers) ComposerAddInventory(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(addInventoryEvent)(w, r)
}

// ComposerRemoveInventory deletes one inventory row.
func (h *Handlers) ComposerRemoveInventory(w http.ResponseWriter, r *http.Request) {
	h.handleEvent(removeInventoryEvent)(w, r)
}

func detailsEvent(r *http.Request, c *products.Composer) (eventResult, error) {
	return eventResult{}, c.SetDetails(products.Details{
		Title:          r.PostFormValue("title"),
		Description:    r.PostFormValue("description"),
		Price:          r.PostFormValue("price"),
		Category:       r.PostFormValue("category"),
		CustomCategory: r.PostFormValue("customCategory"),
		Gender:         r.PostFormValue("gender"),
		Material:       r.PostFormValue("material"),
		CustomMaterial: r.PostFormValue("customMaterial"),
	})
}

func addColorEvent(r *http.Request, c *products.Composer) (eventResult, error) {
	return eventResult{slot: producttpl.ErrorColor}, c.AddColor(r.PostFormValue("color"))
}

func addCustomColorEvent(r *http.Request, c *products.Composer) (eventResult, error) {
	name := r.PostFormValue("colorName")
	code := r.PostFormValue("colorCode")
	res := eventResult{slot: producttpl.ErrorCustomColor}
	_, err := c.AddCustomColor(name, code)
	if err != nil {
		res.input = producttpl.FormInput{CustomColorName: name, CustomColorCode: code}
	}
	return res, err
}

func removeColorEvent(r *http.Request, c *products.Composer) (eventResult, error) {
	c.RemoveColor(r.PostFormValue("color"))
	return eventResult{}, nil
}

func addInventoryEvent(r *http.Request, c *products.Composer) (eventResult, error) {
	color := r.PostFormValue("color")
	size := r.PostFormValue("size")
	stock := r.PostFormValue("stock")
	res := eventResult{
		slot:  producttpl.ErrorInventory,
		input: producttpl.FormInput{InventoryColor: color, InventorySize: size},
	}
	_, err := c.AddInventoryRow(color, size, stock)
	if err != nil {
		res.input.InventoryStock = stock
	}
	return res, err
}

func removeInventoryEvent(r *http.Request, c *products.Composer) (eventResult, error) {
	c.RemoveInventoryRow(r.PostFormValue("color"), r.PostFormValue("size"))
	return eventResult{}, nil
}
