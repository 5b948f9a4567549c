package helpers

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup for a component. The first write error sticks and
// later writes become no-ops, so components check Err once at the end.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML wraps w.
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes trusted markup verbatim.
func (h *HTML) Raw(markup string) *HTML {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, markup)
	}
	return h
}

// Text writes escaped text.
func (h *HTML) Text(value string) *HTML {
	return h.Raw(templ.EscapeString(value))
}

// Attr writes ` name="value"` with the value escaped.
func (h *HTML) Attr(name, value string) *HTML {
	return h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// AttrIf writes a boolean attribute when on is true.
func (h *HTML) AttrIf(on bool, name string) *HTML {
	if on {
		h.Raw(" " + name)
	}
	return h
}

// Open writes an opening tag with attributes given as name/value pairs.
func (h *HTML) Open(tag string, attrs ...string) *HTML {
	h.Raw("<" + tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		h.Attr(attrs[i], attrs[i+1])
	}
	return h.Raw(">")
}

// Close writes a closing tag.
func (h *HTML) Close(tag string) *HTML {
	return h.Raw("</" + tag + ">")
}

// Elem writes a complete element holding escaped text.
func (h *HTML) Elem(tag, text string, attrs ...string) *HTML {
	return h.Open(tag, attrs...).Text(text).Close(tag)
}

// Component renders a nested component.
func (h *HTML) Component(ctx context.Context, c templ.Component) *HTML {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
	return h
}

// Err returns the first write error.
func (h *HTML) Err() error {
	return h.err
}
