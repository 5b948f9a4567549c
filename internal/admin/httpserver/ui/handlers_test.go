package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/drafts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	appsession "github.com/husnain417/Steth-admin-Panel/internal/admin/session"
	producttpl "github.com/husnain417/Steth-admin-Panel/internal/admin/templates/products"
)

func TestSessionEndedDiscardsDraftsAndPreviews(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := drafts.NewMemoryStore(0)
	previews := media.NewMemoryPreviews("/admin")
	h := NewHandlers(Dependencies{Drafts: store, Stager: media.NewStager(previews)})

	newKey := drafts.Key{Session: "s1", Draft: drafts.NewDraftKey}
	editKey := drafts.Key{Session: "s1", Draft: "p1"}
	otherKey := drafts.Key{Session: "s2", Draft: drafts.NewDraftKey}
	for _, key := range []drafts.Key{newKey, editKey, otherKey} {
		require.NoError(t, store.Save(ctx, key, products.NewCreateComposer(catalog.Default())))
	}
	_, err := h.stager.Stage(ctx, media.Scope{Session: "s1", ProductID: "p1"}, "Black", []products.ImageFile{pngFile(t)})
	require.NoError(t, err)
	_, err = h.stager.Stage(ctx, media.Scope{Session: "s2", ProductID: "p1"}, "Black", []products.ImageFile{pngFile(t)})
	require.NoError(t, err)

	h.SessionEnded(ctx, appsession.Data{ID: "s1"})

	_, err = store.Load(ctx, newKey)
	require.True(t, errors.Is(err, drafts.ErrNotFound))
	_, err = store.Load(ctx, editKey)
	require.True(t, errors.Is(err, drafts.ErrNotFound))
	_, err = store.Load(ctx, otherKey)
	require.NoError(t, err, "other sessions keep their drafts")
	require.Equal(t, 1, previews.Len())
}

func TestDecodeImageStep(t *testing.T) {
	t.Parallel()

	handoff := `{"_id":"p1","name":"Scrub Set","colors":[{"name":"Black","code":"#000000"}]}`

	s, err := decodeImageStep(imageRequest("p1", products.ProductDataParam, handoff), producttpl.StepImages)
	require.NoError(t, err)
	require.Equal(t, "Scrub Set", s.productName)
	require.True(t, s.allows(media.DefaultTarget))
	require.True(t, s.allows("Black"))
	require.False(t, s.allows("Navy"))
	require.Equal(t, "/admin/products/p1/images?productData="+url.QueryEscape(handoff), s.pageURL("/admin"))

	_, err = decodeImageStep(imageRequest("p2", products.ProductDataParam, handoff), producttpl.StepImages)
	require.ErrorIs(t, err, products.ErrMalformedHandoff)

	s, err = decodeImageStep(imageRequest("p1", products.NewColorsParam, `[{"name":"Maroon","code":"#800000"}]`), producttpl.StepUpdateImages)
	require.NoError(t, err)
	require.False(t, s.allows(media.DefaultTarget), "update steps have no default images")
	require.True(t, s.allows("Maroon"))

	_, err = decodeImageStep(imageRequest("p1", products.NewColorsParam, "[]"), producttpl.StepUpdateImages)
	require.ErrorIs(t, err, products.ErrMalformedHandoff)
}

func TestDraftPageURL(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/admin/products/new", draftPageURL("/admin", drafts.NewDraftKey))
	require.Equal(t, "/admin/products/p%201/edit", draftPageURL("/admin", "p 1"))
}

func imageRequest(productID, param, value string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/products/"+productID+"/images?"+url.Values{param: {value}}.Encode(), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productID", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func pngFile(t *testing.T) products.ImageFile {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))))
	return products.ImageFile{Name: "front.png", ContentType: "image/png", Data: buf.Bytes()}
}
