package products

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

// Query parameters carrying hand-off data to the image step.
const (
	ProductDataParam = "productData"
	NewColorsParam   = "newColors"
)

const fallbackHandoffCode = "#000000"

// ErrMalformedHandoff indicates a missing or undecodable hand-off parameter.
var ErrMalformedHandoff = errors.New("products: malformed hand-off data")

// Flow distinguishes creating a product from editing an existing one.
type Flow string

const (
	FlowCreate Flow = "create"
	FlowUpdate Flow = "update"
)

// Phase is the submission state of a composer.
type Phase string

const (
	PhaseEditing     Phase = "editing"
	PhaseSubmitting  Phase = "submitting"
	PhaseRedirecting Phase = "redirecting"
)

// StepKind names the screen that follows a successful submission.
type StepKind string

const (
	StepProductImages StepKind = "product_images"
	StepColorImages   StepKind = "color_images"
	StepProductList   StepKind = "product_list"
)

// HandoffColor identifies a color for the image step.
type HandoffColor struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// ProductHandoff identifies a freshly created product for the image step.
type ProductHandoff struct {
	ID     string         `json:"_id"`
	Name   string         `json:"name,omitempty"`
	Colors []HandoffColor `json:"colors"`
}

// NextStep is the result of a successful submission.
type NextStep struct {
	Kind      StepKind
	ProductID string
	Product   *ProductHandoff
	Colors    []HandoffColor
}

// Path renders the navigation target below basePath.
func (n NextStep) Path(basePath string) (string, error) {
	base := strings.TrimRight(basePath, "/")
	switch n.Kind {
	case StepProductImages:
		if n.Product == nil {
			return "", fmt.Errorf("%w: product hand-off is empty", ErrMalformedHandoff)
		}
		raw, err := json.Marshal(n.Product)
		if err != nil {
			return "", fmt.Errorf("encode product hand-off: %w", err)
		}
		q := url.Values{ProductDataParam: {string(raw)}}
		return base + "/products/" + url.PathEscape(n.Product.ID) + "/images?" + q.Encode(), nil
	case StepColorImages:
		raw, err := json.Marshal(n.Colors)
		if err != nil {
			return "", fmt.Errorf("encode color hand-off: %w", err)
		}
		q := url.Values{NewColorsParam: {string(raw)}}
		return base + "/products/" + url.PathEscape(n.ProductID) + "/update-images?" + q.Encode(), nil
	default:
		return base + "/products", nil
	}
}

// DecodeProductHandoff parses the productData parameter of the create image step.
func DecodeProductHandoff(raw string) (ProductHandoff, error) {
	var h ProductHandoff
	if strings.TrimSpace(raw) == "" {
		return h, fmt.Errorf("%w: %s is missing", ErrMalformedHandoff, ProductDataParam)
	}
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return ProductHandoff{}, fmt.Errorf("%w: %v", ErrMalformedHandoff, err)
	}
	if strings.TrimSpace(h.ID) == "" {
		return ProductHandoff{}, fmt.Errorf("%w: product id is missing", ErrMalformedHandoff)
	}
	if err := checkHandoffColors(h.Colors); err != nil {
		return ProductHandoff{}, err
	}
	return h, nil
}

// DecodeNewColors parses the newColors parameter of the update image step.
func DecodeNewColors(raw string) ([]HandoffColor, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: %s is missing", ErrMalformedHandoff, NewColorsParam)
	}
	var colors []HandoffColor
	if err := json.Unmarshal([]byte(raw), &colors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHandoff, err)
	}
	if len(colors) == 0 {
		return nil, fmt.Errorf("%w: no colors", ErrMalformedHandoff)
	}
	if err := checkHandoffColors(colors); err != nil {
		return nil, err
	}
	return colors, nil
}

func checkHandoffColors(colors []HandoffColor) error {
	for _, c := range colors {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: color without name", ErrMalformedHandoff)
		}
	}
	return nil
}

func handoffColor(opt catalog.ColorOption) HandoffColor {
	code := opt.Code
	if !catalog.ValidHexCode(code) {
		code = fallbackHandoffCode
	}
	return HandoffColor{Name: opt.Name, Code: code}
}
