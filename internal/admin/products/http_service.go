package products

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

const maxErrorBody = 1 << 16

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service against the product REST API.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service rooted at baseURL, for example
// https://backend.example.com/api.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("products: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("products: parse base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("products: base URL %q must be absolute", baseURL)
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawQuery = ""
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{base: parsed, client: client}, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// List fetches every product summary.
func (s *HTTPService) List(ctx context.Context, token string) ([]Summary, error) {
	var out []Summary
	if err := s.call(ctx, "list products", http.MethodGet, nil, "", token, nil, &out, "products"); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches a single product record.
func (s *HTTPService) Get(ctx context.Context, token, productID string) (Record, error) {
	var out Record
	if err := s.call(ctx, "get product", http.MethodGet, nil, "", token, nil, &out, "products", productID); err != nil {
		return Record{}, err
	}
	if out.ID == "" {
		out.ID = productID
	}
	return out, nil
}

// Create posts a new product. The idempotency key lets the backend drop
// replays of the same draft.
func (s *HTTPService) Create(ctx context.Context, token string, payload Payload, idempotencyKey string) (Created, error) {
	body, err := encodeJSON(payload)
	if err != nil {
		return Created{}, err
	}
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set("Idempotency-Key", idempotencyKey)
	}
	var out Created
	if err := s.call(ctx, "create product", http.MethodPost, body, "application/json", token, headers, &out, "products"); err != nil {
		return Created{}, err
	}
	if out.ID == "" {
		return Created{}, &BackendError{Op: "create product", Message: "Failed to create product", Err: errors.New("response is missing the product id")}
	}
	return out, nil
}

// Update replaces a product.
func (s *HTTPService) Update(ctx context.Context, token, productID string, payload Payload) error {
	body, err := encodeJSON(payload)
	if err != nil {
		return err
	}
	return s.call(ctx, "update product", http.MethodPut, body, "application/json", token, nil, nil, "products", productID)
}

// UploadDefaultImages posts the default image set of a product.
func (s *HTTPService) UploadDefaultImages(ctx context.Context, token, productID string, files []ImageFile) error {
	body, contentType, err := encodeImages(files)
	if err != nil {
		return err
	}
	return s.call(ctx, "upload default images", http.MethodPost, body, contentType, token, nil, nil, "products", productID, "images", "default")
}

// UploadColorImages posts the images of one product color.
func (s *HTTPService) UploadColorImages(ctx context.Context, token, productID, color string, files []ImageFile) error {
	body, contentType, err := encodeImages(files)
	if err != nil {
		return err
	}
	return s.call(ctx, "upload color images", http.MethodPost, body, contentType, token, nil, nil, "products", productID, "images", "color", color)
}

func (s *HTTPService) call(ctx context.Context, op, method string, body io.Reader, contentType, token string, headers http.Header, out any, segments ...string) error {
	req, err := s.newRequest(ctx, method, body, token, segments...)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return &BackendError{Op: op, Message: msgConnection, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(op, resp)
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&env); err != nil {
		if out == nil && errors.Is(err, io.EOF) {
			return nil
		}
		return &BackendError{Op: op, Status: resp.StatusCode, Message: fallbackMessage(op), Err: fmt.Errorf("decode response: %w", err)}
	}
	if env.Success != nil && !*env.Success {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = fallbackMessage(op)
		}
		return &BackendError{Op: op, Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &BackendError{Op: op, Status: resp.StatusCode, Message: fallbackMessage(op), Err: errors.New("response has no data")}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &BackendError{Op: op, Status: resp.StatusCode, Message: fallbackMessage(op), Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func (s *HTTPService) newRequest(ctx context.Context, method string, body io.Reader, token string, segments ...string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(segments...), body)
	if err != nil {
		return nil, fmt.Errorf("products: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *HTTPService) resolve(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, seg := range segments {
		escaped = append(escaped, url.PathEscape(seg))
	}
	return s.base.String() + "/" + strings.Join(escaped, "/")
}

func errorFromResponse(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	berr := &BackendError{Op: op, Status: resp.StatusCode, Message: fallbackMessage(op)}
	if resp.StatusCode == http.StatusNotFound {
		berr.Err = ErrNotFound
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch {
		case strings.TrimSpace(payload.Message) != "":
			berr.Message = strings.TrimSpace(payload.Message)
		case strings.TrimSpace(payload.Error) != "":
			berr.Message = strings.TrimSpace(payload.Error)
		}
	}
	return berr
}

func fallbackMessage(op string) string {
	switch op {
	case "create product":
		return "Failed to create product"
	case "update product":
		return "Failed to update product"
	case "get product":
		return "Failed to load product"
	case "list products":
		return "Failed to load products"
	case "upload default images", "upload color images":
		return "Error uploading images. Please try again."
	default:
		return msgGeneric
	}
}

func encodeJSON(payload any) (io.Reader, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("products: encode payload: %w", err)
	}
	return &buf, nil
}

func encodeImages(files []ImageFile) (io.Reader, string, error) {
	if len(files) == 0 {
		return nil, "", errors.New("products: no images to upload")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, f := range files {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("image-%d", i+1)
		}
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename=%q`, name))
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("products: create image part: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("products: write image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("products: close multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
