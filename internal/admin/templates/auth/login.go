// Package auth renders the staff sign-in screen.
package auth

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/helpers"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/layouts"
	"github.com/husnain417/Steth-admin-Panel/internal/admin/templates/partials"
)

// LoginPageData carries the sign-in form state. Message is informational
// (signed out, session expired); Error explains a rejected attempt.
type LoginPageData struct {
	Message   string
	Error     string
	Next      string
	LoginPath string
	CSRFToken string
}

// LoginPage renders the sign-in form. Staff paste a Firebase ID token (or,
// in development, any token) which is verified server-side.
func LoginPage(data LoginPageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := helpers.NewHTML(w)
		h.Open("section", "class", "card", "data-login")
		h.Elem("h1", "Sign in", "class", "text-xl font-bold")
		h.Component(ctx, partials.Alert("info", data.Message))
		h.Component(ctx, partials.Alert("error", data.Error))

		h.Open("form", "method", "post", "action", data.LoginPath, "class", "space-y-4")
		h.Raw(`<input type="hidden" name="csrf_token"`).Attr("value", data.CSRFToken).Raw(">")
		h.Raw(`<input type="hidden" name="next"`).Attr("value", data.Next).Raw(">")

		h.Open("div").Elem("label", "ID token", "for", "id_token")
		h.Raw(`<textarea id="id_token" name="id_token" rows="3" required></textarea>`)
		h.Close("div")

		h.Elem("button", "Sign in", "type", "submit")
		h.Close("form")
		h.Close("section")
		return h.Err()
	})
	return layouts.Bare("Sign in", body)
}
