package products

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/media"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/layouts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/partials"
)

// ImagesPage renders an image-upload step inside the admin shell.
func ImagesPage(page layouts.Page, productsHref string, data ImagesPageData) templ.Component {
	page.Title = imagesHeading(data)
	page.Breadcrumbs = []partials.Breadcrumb{
		{Label: "Products", Href: productsHref},
		{Label: "Images"},
	}
	page.Body = ImageStep(data)
	return layouts.Base(page)
}

func imagesHeading(data ImagesPageData) string {
	if data.Step == StepUpdateImages {
		return "Upload images for new colors"
	}
	if data.ProductName != "" {
		return "Upload images for " + data.ProductName
	}
	return "Upload product images"
}

// ImageStep renders the swappable image step fragment.
func ImageStep(data ImagesPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Open("div", "id", ImageStepID, "data-step", data.Step, "data-product", data.ProductID)
		h.Elem("h1", imagesHeading(data), "class", "text-xl font-bold")
		h.Elem("p", "Up to "+strconv.Itoa(media.MaxImagesPerTarget)+" images per color.", "class", "text-sm text-slate-500")
		h.Component(ctx, partials.Alert(data.MessageKind, data.Message))

		for _, target := range data.Targets {
			imageTarget(ctx, h, data, target)
		}

		openImageForm(ctx, h, data, "/finish", false)
		h.Elem("button", data.FinishLabel, "type", "submit", "class", "btn btn-primary", "data-finish")
		h.Close("form")

		h.Close("div")
		return h.Err()
	})
}

func openImageForm(ctx context.Context, h *helpers.HTML, data ImagesPageData, suffix string, multipart bool, attrs ...string) {
	action := data.ActionBase + suffix
	base := []string{
		"method", "post",
		"action", action,
		"hx-post", action,
		"hx-target", "#" + ImageStepID,
		"hx-swap", "outerHTML",
	}
	if multipart {
		base = append(base, "enctype", "multipart/form-data", "hx-encoding", "multipart/form-data")
	}
	h.Open("form", append(base, attrs...)...)
	h.Component(ctx, partials.CSRFField())
	h.Raw(`<input type="hidden"`).Attr("name", data.HandoffName).Attr("value", data.Handoff).Raw(">")
}

func imageTarget(ctx context.Context, h *helpers.HTML, data ImagesPageData, target ImageTarget) {
	h.Open("section", "class", "card", "data-target", target.Key)
	h.Open("h2", "class", "font-semibold")
	if target.Code != "" {
		h.Raw(`<span class="swatch" aria-hidden="true"`).Attr("style", "background:"+target.Code).Raw("></span>")
	}
	h.Text(target.Label).Close("h2")
	h.Elem("p", helpers.Plural(len(target.Staged), "image staged", "images staged"), "class", "text-xs text-slate-500", "data-staged-count")

	if len(target.Staged) > 0 {
		h.Open("ul", "class", "previews")
		for _, img := range target.Staged {
			h.Open("li", "data-preview", img.ID)
			h.Raw(`<img loading="lazy"`).Attr("src", img.PreviewURL).Attr("alt", img.Name).Raw(">")
			openImageForm(ctx, h, data, "/remove", false, "class", "inline")
			h.Raw(`<input type="hidden" name="target"`).Attr("value", target.Key).Raw(">")
			h.Raw(`<input type="hidden" name="preview"`).Attr("value", img.ID).Raw(">")
			h.Raw(`<button type="submit" class="btn-link"`).Attr("aria-label", "Remove "+img.Name).Raw(">&times;</button>")
			h.Close("form")
			h.Close("li")
		}
		h.Close("ul")
	}

	if !target.Full() {
		openImageForm(ctx, h, data, "/stage", true, "data-stage")
		h.Raw(`<input type="hidden" name="target"`).Attr("value", target.Key).Raw(">")
		h.Raw(`<input type="file" name="images" accept="image/*" multiple`).Attr("aria-label", "Images for "+target.Label).Raw(">")
		h.Elem("button", "Add images", "type", "submit", "class", "btn")
		h.Close("form")
	}

	if len(target.Staged) > 0 {
		openImageForm(ctx, h, data, "/replace", true, "data-replace")
		h.Raw(`<input type="hidden" name="target"`).Attr("value", target.Key).Raw(">")
		h.Raw(`<input type="file" name="images" accept="image/*" multiple`).Attr("aria-label", "Replacement images for "+target.Label).Raw(">")
		h.Elem("button", "Replace all", "type", "submit", "class", "btn")
		h.Close("form")

		openImageForm(ctx, h, data, "/upload", false, "data-upload", "hx-disabled-elt", "find button")
		h.Raw(`<input type="hidden" name="target"`).Attr("value", target.Key).Raw(">")
		h.Elem("button", "Upload "+target.Label, "type", "submit", "class", "btn btn-primary")
		h.Close("form")
	}
	h.Close("section")
}

// HandoffErrorPage renders the hard error shown when the image step cannot
// read the data handed over by the composer.
func HandoffErrorPage(page layouts.Page, data HandoffErrorData) templ.Component {
	page.Title = "Images"
	page.Breadcrumbs = []partials.Breadcrumb{{Label: "Products", Href: data.BackHref}, {Label: "Images"}}
	page.Body = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Open("section", "class", "card", "data-handoff-error")
		h.Elem("h1", "Cannot open the image step", "class", "text-xl font-bold")
		h.Component(ctx, partials.Alert("error", data.Message))
		h.Elem("a", "Back to products", "href", data.BackHref, "class", "btn")
		h.Close("section")
		return h.Err()
	})
	return layouts.Base(page)
}
