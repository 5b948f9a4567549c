package products

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
)

// StaticService is an in-memory Service used for local development and tests.
type StaticService struct {
	mu        sync.Mutex
	records   map[string]Record
	images    map[string]map[string]int
	created   map[string]string
	CreateErr error
	UpdateErr error
	UploadErr error
}

// NewStaticService seeds the service with the provided records.
func NewStaticService(records ...Record) *StaticService {
	s := &StaticService{
		records: make(map[string]Record, len(records)),
		images:  make(map[string]map[string]int),
		created: make(map[string]string),
	}
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = newProductID()
		}
		s.records[rec.ID] = rec
	}
	return s
}

// List returns summaries ordered by name.
func (s *StaticService) List(_ context.Context, _ string) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Summary, 0, len(s.records))
	for _, rec := range s.records {
		total := 0
		for _, row := range rec.Inventory {
			total += row.Stock
		}
		out = append(out, Summary{
			ID:         rec.ID,
			Name:       rec.Name,
			Price:      rec.Price,
			Category:   rec.Category,
			Gender:     rec.Gender,
			TotalStock: total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Get returns the stored record.
func (s *StaticService) Get(_ context.Context, _ string, productID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[productID]
	if !ok {
		return Record{}, &BackendError{Op: "get product", Status: http.StatusNotFound, Message: "Product not found", Err: ErrNotFound}
	}
	return rec, nil
}

// Create stores the payload. Replays with the same idempotency key return
// the product created first.
func (s *StaticService) Create(_ context.Context, _ string, payload Payload, idempotencyKey string) (Created, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.CreateErr != nil {
		return Created{}, s.CreateErr
	}
	if id, ok := s.created[idempotencyKey]; ok && idempotencyKey != "" {
		rec := s.records[id]
		return Created{ID: rec.ID, Name: rec.Name, Colors: rec.Colors}, nil
	}

	rec := recordFromPayload(newProductID(), payload)
	s.records[rec.ID] = rec
	if idempotencyKey != "" {
		s.created[idempotencyKey] = rec.ID
	}
	return Created{ID: rec.ID, Name: rec.Name, Colors: rec.Colors}, nil
}

// Update replaces the stored record.
func (s *StaticService) Update(_ context.Context, _ string, productID string, payload Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.records[productID]; !ok {
		return &BackendError{Op: "update product", Status: http.StatusNotFound, Message: "Product not found", Err: ErrNotFound}
	}
	s.records[productID] = recordFromPayload(productID, payload)
	return nil
}

// UploadDefaultImages counts the uploaded images.
func (s *StaticService) UploadDefaultImages(ctx context.Context, token, productID string, files []ImageFile) error {
	return s.upload(productID, "default", files)
}

// UploadColorImages counts the uploaded images for a color.
func (s *StaticService) UploadColorImages(ctx context.Context, token, productID, color string, files []ImageFile) error {
	return s.upload(productID, "color:"+color, files)
}

// ImageCount reports how many images were uploaded for a target ("default" or "color:<name>").
func (s *StaticService) ImageCount(productID, target string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.images[productID][target]
}

func (s *StaticService) upload(productID, target string, files []ImageFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UploadErr != nil {
		return s.UploadErr
	}
	if _, ok := s.records[productID]; !ok {
		return &BackendError{Op: "upload images", Status: http.StatusNotFound, Message: "Product not found", Err: ErrNotFound}
	}
	if s.images[productID] == nil {
		s.images[productID] = make(map[string]int)
	}
	s.images[productID][target] += len(files)
	return nil
}

func recordFromPayload(id string, p Payload) Record {
	return Record{
		ID:          id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Gender:      p.Gender,
		Material:    p.Material,
		Colors:      append([]ColorPayload(nil), p.Colors...),
		Sizes:       append([]SizePayload(nil), p.Sizes...),
		Inventory:   append([]InventoryPayload(nil), p.Inventory...),
	}
}

func newProductID() string {
	return strings.ToLower(ulid.Make().String())
}
