package products

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

// Composer owns one product draft together with the session catalog and
// the submission state machine. It is not safe for concurrent use; callers
// serialise access per draft.
type Composer struct {
	Flow          Flow            `json:"flow"`
	ProductID     string          `json:"productId,omitempty"`
	Phase         Phase           `json:"phase"`
	Catalog       catalog.Catalog `json:"catalog"`
	Draft         Draft           `json:"draft"`
	Original      []string        `json:"originalColors,omitempty"`
	NewlyAdded    []string        `json:"newlyAddedColors,omitempty"`
	SubmissionKey string          `json:"submissionKey,omitempty"`
}

// NewCreateComposer starts an empty draft for a new product.
func NewCreateComposer(cat catalog.Catalog) *Composer {
	return &Composer{
		Flow:          FlowCreate,
		Phase:         PhaseEditing,
		Catalog:       cat.Clone(),
		SubmissionKey: uuid.NewString(),
	}
}

// Valid reports whether the save action is enabled.
func (c *Composer) Valid() bool {
	return IsValid(c.Draft)
}

// Payload formats the current draft for the backend.
func (c *Composer) Payload() Payload {
	return FormatForAPI(c.Draft, c.Catalog)
}

// SetDetails replaces the descriptive fields. Select values must come from
// the catalog; custom category and material text is cleaned of markup.
func (c *Composer) SetDetails(d Details) error {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Price = strings.TrimSpace(d.Price)

	if d.Category != "" && d.Category != catalog.CustomValue {
		if _, ok := c.Catalog.Category(d.Category); !ok {
			return invalid("category", "Please select a valid category", ErrInvalidOption)
		}
		d.CustomCategory = ""
	}
	if d.Material != "" && d.Material != catalog.CustomValue {
		if _, ok := c.Catalog.Material(d.Material); !ok {
			return invalid("material", "Please select a valid material", ErrInvalidOption)
		}
		d.CustomMaterial = ""
	}
	if d.Gender != "" {
		if _, ok := c.Catalog.Gender(d.Gender); !ok {
			return invalid("gender", "Please select a valid gender", ErrInvalidOption)
		}
	}
	d.CustomCategory = catalog.CleanLabel(d.CustomCategory)
	d.CustomMaterial = catalog.CleanLabel(d.CustomMaterial)

	c.Draft.Details = d
	return nil
}

// AddColor selects a color. Selecting a color twice is a no-op.
func (c *Composer) AddColor(color string) error {
	color = strings.TrimSpace(color)
	if opt, ok := c.Catalog.Color(color); ok {
		color = opt.Value
	}
	added, err := c.Draft.AddColor(color)
	if err != nil || !added {
		return err
	}
	c.trackNewColor(color)
	return nil
}

// AddCustomColor extends the session catalog with a staff-defined color and
// selects it. On failure neither the catalog nor the color set changes.
func (c *Composer) AddCustomColor(name, code string) (catalog.ColorOption, error) {
	next, opt, err := c.Catalog.AddCustomColor(name, code)
	switch {
	case errors.Is(err, catalog.ErrInvalidHexCode):
		return catalog.ColorOption{}, invalid("colorCode", msgInvalidHexCode, err)
	case errors.Is(err, catalog.ErrEmptyName):
		return catalog.ColorOption{}, invalid("colorName", msgColorNameNeeded, err)
	case errors.Is(err, catalog.ErrColorExists):
		return catalog.ColorOption{}, invalid("colorName", msgColorExists, err)
	case err != nil:
		return catalog.ColorOption{}, err
	}

	draft := c.Draft.Clone()
	if _, err := draft.AddColor(opt.Value); err != nil {
		return catalog.ColorOption{}, err
	}
	c.Catalog = next
	c.Draft = draft
	c.trackNewColor(opt.Value)
	return opt, nil
}

// RemoveColor deselects a color and drops its inventory rows.
func (c *Composer) RemoveColor(color string) bool {
	if !c.Draft.RemoveColor(color) {
		return false
	}
	c.NewlyAdded = without(c.NewlyAdded, color)
	return true
}

// AddInventoryRow records stock for a (color, size) pair.
func (c *Composer) AddInventoryRow(color, size, stock string) (InventoryRow, error) {
	return c.Draft.AddInventoryRow(c.Catalog, color, size, stock)
}

// RemoveInventoryRow deletes the stock entry for a (color, size) pair.
func (c *Composer) RemoveInventoryRow(color, size string) bool {
	return c.Draft.RemoveInventoryRow(color, size)
}

// BeginSubmit runs the final guard and moves the composer into the
// submitting phase.
func (c *Composer) BeginSubmit() (Payload, error) {
	if c.Phase == PhaseSubmitting || c.Phase == PhaseRedirecting {
		return Payload{}, ErrSubmitInProgress
	}
	if err := CheckSubmittable(c.Draft, c.Flow); err != nil {
		return Payload{}, err
	}
	if c.Flow == FlowCreate && c.SubmissionKey == "" {
		c.SubmissionKey = uuid.NewString()
	}
	c.Phase = PhaseSubmitting
	return c.Payload(), nil
}

// FailSubmit returns the composer to editing with the draft intact.
func (c *Composer) FailSubmit(err error) error {
	c.Phase = PhaseEditing
	return err
}

// CompleteCreate hands the new product and every selected color to the image step.
func (c *Composer) CompleteCreate(created Created) NextStep {
	c.Phase = PhaseRedirecting
	c.ProductID = created.ID

	colors := make([]HandoffColor, 0, len(c.Draft.Colors))
	for _, key := range c.Draft.Colors {
		colors = append(colors, handoffColor(c.Catalog.ResolveColor(key)))
	}
	name := created.Name
	if name == "" {
		name = strings.TrimSpace(c.Draft.Details.Title)
	}
	return NextStep{
		Kind:      StepProductImages,
		ProductID: created.ID,
		Product: &ProductHandoff{
			ID:     created.ID,
			Name:   name,
			Colors: colors,
		},
	}
}

// CompleteUpdate sends only the colors added in this session to the image
// step, or goes back to the product list when there are none.
func (c *Composer) CompleteUpdate() NextStep {
	c.Phase = PhaseRedirecting
	if len(c.NewlyAdded) == 0 {
		return NextStep{Kind: StepProductList, ProductID: c.ProductID}
	}
	colors := make([]HandoffColor, 0, len(c.NewlyAdded))
	for _, key := range c.NewlyAdded {
		colors = append(colors, handoffColor(c.Catalog.ResolveColor(key)))
	}
	return NextStep{Kind: StepColorImages, ProductID: c.ProductID, Colors: colors}
}

// Submit sends the draft to the backend and returns the next step. Any
// failure leaves the composer editing with the draft unchanged.
func (c *Composer) Submit(ctx context.Context, svc Service, token string) (NextStep, error) {
	payload, err := c.BeginSubmit()
	if err != nil {
		return NextStep{}, err
	}

	if c.Flow == FlowCreate {
		created, err := svc.Create(ctx, token, payload, c.SubmissionKey)
		if err != nil {
			return NextStep{}, c.FailSubmit(err)
		}
		return c.CompleteCreate(created), nil
	}

	if err := svc.Update(ctx, token, c.ProductID, payload); err != nil {
		return NextStep{}, c.FailSubmit(err)
	}
	return c.CompleteUpdate(), nil
}

func (c *Composer) trackNewColor(color string) {
	if c.Flow != FlowUpdate {
		return
	}
	if contains(c.Original, color) || contains(c.NewlyAdded, color) {
		return
	}
	c.NewlyAdded = append(c.NewlyAdded, color)
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func without(values []string, target string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
