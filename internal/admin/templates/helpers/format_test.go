package helpers

import (
	"net/url"
	"strings"
	"testing"
)

func TestSetRawQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rawQuery string
		key      string
		value    string
		want     map[string]string
	}{
		{
			name:     "updates existing key",
			rawQuery: "category=Scrubs&page=2",
			key:      "page",
			value:    "3",
			want: map[string]string{
				"category": "Scrubs",
				"page":     "3",
			},
		},
		{
			name:     "adds new key when missing",
			rawQuery: "category=Scrubs",
			key:      "page",
			value:    "1",
			want: map[string]string{
				"category": "Scrubs",
				"page":     "1",
			},
		},
		{
			name:     "handles empty input",
			rawQuery: "",
			key:      "page",
			value:    "1",
			want: map[string]string{
				"page": "1",
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := SetRawQuery(tc.rawQuery, tc.key, tc.value)
			values, err := url.ParseQuery(got)
			if err != nil {
				t.Fatalf("ParseQuery returned error: %v", err)
			}
			for k, expected := range tc.want {
				if got := values.Get(k); got != expected {
					t.Errorf("expected %s=%s, got %s", k, expected, got)
				}
			}
		})
	}
}

func TestDelRawQuery(t *testing.T) {
	t.Parallel()

	raw := "category=Scrubs&page=2"
	got := DelRawQuery(raw, "page")
	values, err := url.ParseQuery(got)
	if err != nil {
		t.Fatalf("ParseQuery returned error: %v", err)
	}
	if values.Get("page") != "" {
		t.Errorf("expected page param removed, got %q", values.Get("page"))
	}
	if values.Get("category") != "Scrubs" {
		t.Errorf("expected category preserved, got %q", values.Get("category"))
	}
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	u := BuildURL("/admin/products", "page=2&sort=name")
	if u != "/admin/products?page=2&sort=name" {
		t.Errorf("unexpected URL: %s", u)
	}

	// handles empty raw query without trailing question mark
	u = BuildURL("/admin/products?page=1", "")
	if u != "/admin/products" {
		t.Errorf("expected query stripped when empty, got %s", u)
	}
}

func TestPrice(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		1500:    "Rs.1,500",
		999:     "Rs.999",
		1234567: "Rs.1,234,567",
		1499.5:  "Rs.1,499.5",
		0:       "Rs.0",
	}
	for in, want := range cases {
		if got := Price(in); got != want {
			t.Errorf("Price(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestHTMLEscapesText(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	h := NewHTML(&b)
	h.Open("p", "title", `"quoted"`).Text("<b>Navy & White</b>").Close("p")
	if err := h.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<p title="&#34;quoted&#34;">&lt;b&gt;Navy &amp; White&lt;/b&gt;</p>`
	if b.String() != want {
		t.Errorf("unexpected markup %s", b.String())
	}
}
