package partials

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/navigation"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/rbac"
)

func TestVisibleItemsFiltersByCapability(t *testing.T) {
	t.Parallel()

	menu := navigation.BuildMenu("/admin")
	require.Len(t, menu, 1)
	catalog := menu[0]

	ctxSupport := middleware.ContextWithUser(context.Background(), &middleware.User{
		Roles: []string{string(rbac.RoleSupport)},
	})
	ctxOps := middleware.ContextWithUser(context.Background(), &middleware.User{
		Roles: []string{string(rbac.RoleOps)},
	})

	items := visibleItems(catalog, ctxSupport)
	require.Len(t, items, 1, "support role only lists products")
	require.Equal(t, "products", items[0].Key)

	require.Len(t, visibleItems(catalog, ctxOps), 2)
	require.False(t, hasVisibleItems(catalog, context.Background()), "anonymous users see nothing")
}

func TestSidebarRenderingFiltersAndHighlights(t *testing.T) {
	t.Parallel()

	menu := navigation.BuildMenu("/admin")

	req := httptest.NewRequest(http.MethodGet, "/admin/products/new", nil)
	var ctx context.Context
	handler := middleware.RequestInfoMiddleware("/admin", "")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	ctx = middleware.ContextWithUser(ctx, &middleware.User{
		Roles: []string{string(rbac.RoleAdmin)},
	})

	var buf bytes.Buffer
	require.NoError(t, Sidebar(menu).Render(ctx, &buf))

	doc := parseHTML(t, buf.Bytes())

	newLink := doc.Find(`a[href="/admin/products/new"]`)
	require.Equal(t, 1, newLink.Length())
	require.Equal(t, "page", newLink.AttrOr("aria-current", ""), "most specific route is highlighted")
	require.Contains(t, newLink.AttrOr("class", ""), "bg-slate-900")

	listLink := doc.Find(`a[href="/admin/products"]`)
	require.Equal(t, 1, listLink.Length())
	require.Empty(t, listLink.AttrOr("aria-current", ""), "parent route is not highlighted as well")
}

func TestSidebarHidesEditLinksFromMarketing(t *testing.T) {
	t.Parallel()

	ctx := middleware.ContextWithUser(context.Background(), &middleware.User{
		Roles: []string{string(rbac.RoleMarketing)},
	})

	var buf bytes.Buffer
	require.NoError(t, Sidebar(navigation.BuildMenu("/admin")).Render(ctx, &buf))

	doc := parseHTML(t, buf.Bytes())
	require.Equal(t, 0, doc.Find(`a[href="/admin/products/new"]`).Length())
	require.Equal(t, 1, doc.Find(`a[href="/admin/products"]`).Length())
}

func parseHTML(t *testing.T, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}
