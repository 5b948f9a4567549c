package testutil

import (
	"net/http"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseResponse parses an HTML response body into a goquery document for assertions.
func ParseResponse(t testing.TB, resp *http.Response) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}
