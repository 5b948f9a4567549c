package products

import (
	"math"
	"strconv"
	"strings"
)

// HasDetails reports whether every required descriptive field is filled in.
func HasDetails(d Draft) bool {
	det := d.Details
	return strings.TrimSpace(det.Title) != "" &&
		strings.TrimSpace(det.Description) != "" &&
		validPrice(det.Price) &&
		det.ResolvedCategory() != "" &&
		det.ResolvedMaterial() != "" &&
		strings.TrimSpace(det.Gender) != ""
}

// HasVariants reports whether the draft carries colors, sizes and stock.
func HasVariants(d Draft) bool {
	return len(d.Colors) > 0 && len(d.SelectedSizes()) > 0 && len(d.Inventory) > 0
}

// IsValid gates the save action. It is recomputed from the draft on every call.
func IsValid(d Draft) bool {
	return HasDetails(d) && HasVariants(d)
}

// MissingStock returns the selected colors that have no inventory row.
func MissingStock(d Draft) []string {
	var missing []string
	for _, color := range d.Colors {
		if len(d.RowsFor(color)) == 0 {
			missing = append(missing, color)
		}
	}
	return missing
}

// CheckSubmittable is the final guard run before a draft is sent to the backend.
func CheckSubmittable(d Draft, flow Flow) error {
	if !IsValid(d) {
		return invalid("form", msgRequiredFields, ErrIncomplete)
	}
	if flow == FlowCreate {
		if missing := MissingStock(d); len(missing) > 0 {
			return &MissingStockError{Colors: missing}
		}
	}
	return nil
}

func parsePrice(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func validPrice(raw string) bool {
	v, ok := parsePrice(raw)
	return ok && v > 0
}
