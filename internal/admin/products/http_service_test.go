package products

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPServiceCreate(t *testing.T) {
	t.Parallel()

	var received Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/products", r.URL.Path)
		require.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		require.Equal(t, "draft-key", r.Header.Get("Idempotency-Key"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"p-1","name":"Scrub Set"}}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api/", srv.Client())
	require.NoError(t, err)

	payload := Payload{Name: "Scrub Set", Price: 1500, Colors: []ColorPayload{{Name: "Black", Value: "Black", Code: "#000000", Available: true}}}
	created, err := svc.Create(context.Background(), "token-123", payload, "draft-key")
	require.NoError(t, err)
	require.Equal(t, "p-1", created.ID)
	require.Equal(t, payload.Colors, received.Colors)
}

func TestHTTPServiceUpdateSurfacesServerMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/products/p-1", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"success":false,"message":"Price must be positive"}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api", srv.Client())
	require.NoError(t, err)

	err = svc.Update(context.Background(), "", "p-1", Payload{})
	var backend *BackendError
	require.ErrorAs(t, err, &backend)
	require.Equal(t, http.StatusBadRequest, backend.Status)
	require.Equal(t, "Price must be positive", UserMessage(err))
}

func TestHTTPServiceUpdateFallsBackToGenericMessage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `<html>oops</html>`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api", srv.Client())
	require.NoError(t, err)

	err = svc.Update(context.Background(), "", "p-1", Payload{})
	require.Equal(t, "Failed to update product", UserMessage(err))
}

func TestHTTPServiceSuccessFalseIsAnError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api", srv.Client())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "", Payload{}, "")
	require.Equal(t, "Failed to create product", UserMessage(err))
}

func TestHTTPServiceNetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL + "/api"
	srv.Close()

	svc, err := NewHTTPService(base, nil)
	require.NoError(t, err)

	err = svc.Update(context.Background(), "", "p-1", Payload{})
	require.True(t, errors.Is(err, ErrUnavailable))
	require.Equal(t, "Failed to connect to the server. Please try again.", UserMessage(err))
}

func TestHTTPServiceGetNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api", srv.Client())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "", "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPServiceListAndGet(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products":
			_, _ = io.WriteString(w, `{"success":true,"data":[{"_id":"p-1","name":"Scrub Set","price":1500,"category":"Scrubs","gender":"Women","totalStock":12,"defaultImages":[{"url":"https://img.example/1.jpg"}]}]}`)
		case "/api/products/p-1":
			_, _ = io.WriteString(w, `{"success":true,"data":{"_id":"p-1","name":"Scrub Set","colors":[{"name":"Black","value":"Black","code":"#000000","available":true}],"inventory":[{"color":"Black","size":"M","stock":12}]}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api", srv.Client())
	require.NoError(t, err)

	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 12, list[0].TotalStock)
	require.Equal(t, "https://img.example/1.jpg", list[0].Thumbnail())

	rec, err := svc.Get(context.Background(), "", "p-1")
	require.NoError(t, err)
	require.Equal(t, []InventoryPayload{{Color: "Black", Size: "M", Stock: 12}}, rec.Inventory)
}

func TestHTTPServiceUploadColorImages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/p-1/images/color/Ceil Blue", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["images"]
		require.Len(t, files, 2)
		require.Equal(t, "front.jpg", files[0].Filename)
		require.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"success":true,"message":"uploaded"}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := NewHTTPService(srv.URL+"/api", srv.Client())
	require.NoError(t, err)

	err = svc.UploadColorImages(context.Background(), "", "p-1", "Ceil Blue", []ImageFile{
		{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("a")},
		{Name: "back.jpg", ContentType: "image/jpeg", Data: []byte("b")},
	})
	require.NoError(t, err)

	err = svc.UploadDefaultImages(context.Background(), "", "p-1", nil)
	require.Error(t, err)
}

func TestNewHTTPServiceValidatesBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPService("", nil)
	require.Error(t, err)
	_, err = NewHTTPService("/relative", nil)
	require.Error(t, err)
}
