// Package products renders the product list, the variant composer and the image steps.
package products

import (
	"errors"
	"net/url"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	domain "github.com/husnain417/Steth-admin-Panel/internal/admin/products"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
)

// ComposerID is the element swapped by htmx after every composer event.
const ComposerID = "composer"

// ImageStepID is the element swapped by htmx after every image step event.
const ImageStepID = "image-step"

// ListPageData feeds the product list.
type ListPageData struct {
	Rows    []ListRow
	Error   string
	CanEdit bool
	NewHref string
}

// ListRow is one product on the list page.
type ListRow struct {
	ID        string
	Name      string
	Category  string
	Gender    string
	Price     string
	Stock     int
	Thumbnail string
	EditHref  string
}

// BuildListPageData converts backend summaries into list rows.
func BuildListPageData(basePath string, summaries []domain.Summary, canEdit bool) ListPageData {
	data := ListPageData{
		CanEdit: canEdit,
		NewHref: helpers.JoinPath(basePath, "/products/new"),
		Rows:    make([]ListRow, 0, len(summaries)),
	}
	for _, s := range summaries {
		data.Rows = append(data.Rows, ListRow{
			ID:        s.ID,
			Name:      s.Name,
			Category:  s.Category,
			Gender:    s.Gender,
			Price:     helpers.Price(s.Price),
			Stock:     s.TotalStock,
			Thumbnail: s.Thumbnail(),
			EditHref:  helpers.JoinPath(basePath, "/products/"+url.PathEscape(s.ID)+"/edit"),
		})
	}
	return data
}

// ColorChip is a selected color.
type ColorChip struct {
	Value string
	Name  string
	Code  string
	New   bool
	Rows  int
}

// InventoryLine is a rendered inventory row.
type InventoryLine struct {
	Color     string
	ColorName string
	Code      string
	Size      string
	Stock     int
}

// FormInput echoes values the user typed so a rejected event does not lose them.
type FormInput struct {
	CustomColorName string
	CustomColorCode string
	InventoryColor  string
	InventorySize   string
	InventoryStock  string
}

// ComposerData is the view model of the add/update product form.
type ComposerData struct {
	Flow         domain.Flow
	Heading      string
	ActionBase   string
	CancelHref   string
	ResetHref    string
	Details      domain.Details
	Catalog      catalog.Catalog
	Colors       []ColorChip
	Inventory    []InventoryLine
	Valid        bool
	MissingStock []string
	Errors       map[string]string
	Input        FormInput
}

// BuildComposerData derives the view model from the composer. Validity and
// missing stock are recomputed on every render.
func BuildComposerData(basePath, draftKey string, c *domain.Composer) ComposerData {
	data := ComposerData{
		Flow:       c.Flow,
		Heading:    "Add New Product",
		ActionBase: helpers.JoinPath(basePath, "/products/drafts/"+url.PathEscape(draftKey)),
		CancelHref: helpers.JoinPath(basePath, "/products"),
		Details:    c.Draft.Details,
		Catalog:    c.Catalog,
		Valid:      c.Valid(),
		Errors:     map[string]string{},
	}
	if c.Flow == domain.FlowUpdate {
		data.Heading = "Update Product"
		data.ResetHref = helpers.JoinPath(basePath, "/products/"+url.PathEscape(c.ProductID)+"/edit?reset=1")
	}

	for _, value := range c.Draft.Colors {
		opt := c.Catalog.ResolveColor(value)
		data.Colors = append(data.Colors, ColorChip{
			Value: value,
			Name:  opt.Name,
			Code:  opt.Code,
			New:   c.Flow == domain.FlowUpdate && containsValue(c.NewlyAdded, value),
			Rows:  len(c.Draft.RowsFor(value)),
		})
	}
	for _, row := range c.Draft.Inventory {
		opt := c.Catalog.ResolveColor(row.Color)
		data.Inventory = append(data.Inventory, InventoryLine{
			Color:     row.Color,
			ColorName: opt.Name,
			Code:      opt.Code,
			Size:      row.Size,
			Stock:     row.Stock,
		})
	}
	if c.Flow == domain.FlowCreate {
		for _, value := range domain.MissingStock(c.Draft) {
			data.MissingStock = append(data.MissingStock, c.Catalog.ResolveColor(value).Name)
		}
	}
	return data
}

// Error slots of the composer outside the details fields.
const (
	ErrorForm        = "form"
	ErrorColor       = "color"
	ErrorCustomColor = "customColor"
	ErrorInventory   = "inventory"
)

// WithError attaches err to the details field it concerns. Errors without a
// field are shown at the top of the form.
func (d ComposerData) WithError(err error) ComposerData {
	field := ErrorForm
	var validation *domain.ValidationError
	if errors.As(err, &validation) && validation.Field != "" && validation.Field != ErrorForm {
		field = validation.Field
	}
	return d.WithErrorIn(field, err)
}

// WithErrorIn shows err next to the given slot.
func (d ComposerData) WithErrorIn(slot string, err error) ComposerData {
	if err == nil {
		return d
	}
	errs := make(map[string]string, len(d.Errors)+1)
	for k, v := range d.Errors {
		errs[k] = v
	}
	errs[slot] = domain.UserMessage(err)
	d.Errors = errs
	return d
}

// UnselectedColors lists catalog colors that can still be added.
func (d ComposerData) UnselectedColors() []catalog.ColorOption {
	var out []catalog.ColorOption
	for _, opt := range d.Catalog.Colors {
		selected := false
		for _, chip := range d.Colors {
			if chip.Value == opt.Value {
				selected = true
				break
			}
		}
		if !selected {
			out = append(out, opt)
		}
	}
	return out
}

// ImageTarget is one color (or the default set) on an image step.
type ImageTarget struct {
	Key    string
	Label  string
	Code   string
	Staged []media.StagedImage
}

// Full reports whether the target reached the per-target image limit.
func (t ImageTarget) Full() bool {
	return len(t.Staged) >= media.MaxImagesPerTarget
}

// ImagesPageData feeds the image-upload steps.
type ImagesPageData struct {
	Step        string
	ProductID   string
	ProductName string
	Handoff     string
	HandoffName string
	ActionBase  string
	FinishLabel string
	Targets     []ImageTarget
	MessageKind string
	Message     string
}

// Image step names, matching their URL segment.
const (
	StepImages       = "images"
	StepUpdateImages = "update-images"
)

// BuildImagesPageData lays out the targets of an image step.
func BuildImagesPageData(basePath, step, productID, productName, handoff string, colors []domain.HandoffColor, staged func(target string) []media.StagedImage) ImagesPageData {
	data := ImagesPageData{
		Step:        step,
		ProductID:   productID,
		ProductName: productName,
		Handoff:     handoff,
		ActionBase:  helpers.JoinPath(basePath, "/products/"+url.PathEscape(productID)+"/"+step),
		FinishLabel: "Finish",
	}
	if step == StepImages {
		data.HandoffName = domain.ProductDataParam
		data.Targets = append(data.Targets, ImageTarget{
			Key:    media.DefaultTarget,
			Label:  "Default images",
			Staged: staged(media.DefaultTarget),
		})
	} else {
		data.HandoffName = domain.NewColorsParam
		data.FinishLabel = "Back to products"
	}
	for _, color := range colors {
		data.Targets = append(data.Targets, ImageTarget{
			Key:    color.Name,
			Label:  color.Name,
			Code:   color.Code,
			Staged: staged(color.Name),
		})
	}
	return data
}

// WithMessage sets the step message.
func (d ImagesPageData) WithMessage(kind, message string) ImagesPageData {
	d.MessageKind = kind
	d.Message = message
	return d
}

// HandoffErrorData feeds the page shown when the hand-off parameter cannot be read.
type HandoffErrorData struct {
	Message  string
	BackHref string
}

func containsValue(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
