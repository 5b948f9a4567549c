package products

import (
	"strings"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

// ColorPayload is a color entry as the backend expects it.
type ColorPayload struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Code      string `json:"code"`
	Available bool   `json:"available"`
}

// SizePayload is a size entry as the backend expects it.
type SizePayload struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
}

// InventoryPayload is a stock entry as the backend expects it.
type InventoryPayload struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Payload is the body of the create and update product calls.
type Payload struct {
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

// FormatForAPI builds the backend payload for a draft. It has no side
// effects; a malformed price is encoded as zero and must be caught by IsValid.
func FormatForAPI(d Draft, cat catalog.Catalog) Payload {
	price, _ := parsePrice(d.Details.Price)

	colors := make([]ColorPayload, 0, len(d.Colors))
	for _, key := range d.Colors {
		opt := cat.ResolveColor(key)
		colors = append(colors, ColorPayload{
			Name:      opt.Name,
			Value:     opt.Value,
			Code:      opt.Code,
			Available: true,
		})
	}

	selected := d.SelectedSizes()
	sizes := make([]SizePayload, 0, len(selected))
	for _, key := range selected {
		name := key
		if opt, ok := cat.Size(key); ok {
			name = opt.Name
		}
		sizes = append(sizes, SizePayload{
			Name:      name,
			Value:     strings.ToUpper(name),
			Available: true,
		})
	}

	inventory := make([]InventoryPayload, 0, len(d.Inventory))
	for _, row := range d.Inventory {
		inventory = append(inventory, InventoryPayload{
			Color: row.Color,
			Size:  strings.ToUpper(row.Size),
			Stock: row.Stock,
		})
	}

	return Payload{
		Name:        strings.TrimSpace(d.Details.Title),
		Description: strings.TrimSpace(d.Details.Description),
		Price:       price,
		Category:    d.Details.ResolvedCategory(),
		Gender:      strings.TrimSpace(d.Details.Gender),
		Material:    d.Details.ResolvedMaterial(),
		Colors:      colors,
		Sizes:       sizes,
		Inventory:   inventory,
	}
}
