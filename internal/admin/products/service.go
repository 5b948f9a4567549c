package products

import "context"

// Service exposes the product backend operations used by the composer and the image step.
type Service interface {
	// List returns the product summaries shown on the product list page.
	List(ctx context.Context, token string) ([]Summary, error)
	// Get fetches the full record used to hydrate an update draft.
	Get(ctx context.Context, token, productID string) (Record, error)
	// Create stores a new product. idempotencyKey is stable for one draft.
	Create(ctx context.Context, token string, payload Payload, idempotencyKey string) (Created, error)
	// Update replaces an existing product.
	Update(ctx context.Context, token, productID string, payload Payload) error
	// UploadDefaultImages attaches images shown when no color is selected.
	UploadDefaultImages(ctx context.Context, token, productID string, files []ImageFile) error
	// UploadColorImages attaches images to one color of a product.
	UploadColorImages(ctx context.Context, token, productID, color string, files []ImageFile) error
}

// Image is a hosted product image.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
}

// Summary is a product row on the list page.
type Summary struct {
	ID            string  `json:"_id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	Gender        string  `json:"gender"`
	TotalStock    int     `json:"totalStock"`
	DefaultImages []Image `json:"defaultImages,omitempty"`
}

// Thumbnail returns the first default image URL, if any.
func (s Summary) Thumbnail() string {
	if len(s.DefaultImages) == 0 {
		return ""
	}
	return s.DefaultImages[0].URL
}

// Record is the full product as stored by the backend.
type Record struct {
	ID          string             `json:"_id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Price       float64            `json:"price"`
	Category    string             `json:"category"`
	Gender      string             `json:"gender"`
	Material    string             `json:"material"`
	Colors      []ColorPayload     `json:"colors"`
	Sizes       []SizePayload      `json:"sizes"`
	Inventory   []InventoryPayload `json:"inventory"`
}

// Created is the backend's answer to a successful create call.
type Created struct {
	ID     string         `json:"_id"`
	Name   string         `json:"name"`
	Colors []ColorPayload `json:"colors,omitempty"`
}

// ImageFile is an image ready to be sent to the backend.
type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}
