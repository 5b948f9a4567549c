package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/httpserver/middleware"
)

func requestContext(t *testing.T, base, target string) context.Context {
	t.Helper()

	var ctx context.Context
	middleware.RequestInfoMiddleware(base, "")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	})).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	require.NotNil(t, ctx)
	return ctx
}

func TestNavActive(t *testing.T) {
	t.Parallel()

	ctx := requestContext(t, "/admin", "/admin/products/p1/images")
	require.True(t, NavActive(ctx, "/admin/products", true))
	require.True(t, NavActive(ctx, "/admin/products/", true))
	require.False(t, NavActive(ctx, "/admin/products", false))
	require.False(t, NavActive(ctx, "/admin/product", true), "prefix matches whole segments")
	require.False(t, NavActive(ctx, "", true))
	require.False(t, NavActive(ctx, "/", true))

	ctx = requestContext(t, "/admin", "/admin/products/new")
	require.True(t, NavActive(ctx, "/admin//products/new", false))
}

func TestBasePath(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/admin", BasePath(requestContext(t, "/admin/", "/admin/products")))
	require.Equal(t, "/", BasePath(context.Background()))
}
