package products

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

func TestDecodeProductHandoffRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	for name, raw := range map[string]string{
		"empty":        "",
		"not json":     "{oops",
		"missing id":   `{"colors":[]}`,
		"nameless hue": `{"_id":"p1","colors":[{"code":"#000000"}]}`,
	} {
		raw := raw
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeProductHandoff(raw)
			require.ErrorIs(t, err, ErrMalformedHandoff)
		})
	}
}

func TestDecodeNewColorsRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	_, err := DecodeNewColors(`[{"name":"Navy","code":"#000080"`)
	require.ErrorIs(t, err, ErrMalformedHandoff)

	_, err = DecodeNewColors(`[]`)
	require.ErrorIs(t, err, ErrMalformedHandoff)

	colors, err := DecodeNewColors(`[{"name":"Ceil Blue","code":"#92A1CF"}]`)
	require.NoError(t, err)
	require.Equal(t, []HandoffColor{{Name: "Ceil Blue", Code: "#92A1CF"}}, colors)
}

func TestNextStepPathEscapesProductID(t *testing.T) {
	t.Parallel()

	step := NextStep{Kind: StepColorImages, ProductID: "a/b", Colors: []HandoffColor{{Name: "Ceil Blue", Code: "#92A1CF"}}}
	target, err := step.Path("/admin/")
	require.NoError(t, err)

	u, err := url.Parse(target)
	require.NoError(t, err)
	require.Equal(t, "/admin/products/a%2Fb/update-images", u.EscapedPath())
	require.Equal(t, `[{"name":"Ceil Blue","code":"#92A1CF"}]`, u.Query().Get(NewColorsParam))
}

func TestHandoffColorFallsBackToBlack(t *testing.T) {
	t.Parallel()

	c := NewUpdateComposer(catalog.Default(), Record{ID: "p1"})
	require.NoError(t, c.AddColor("Mystery"))

	next := c.CompleteUpdate()
	require.Equal(t, []HandoffColor{{Name: "Mystery", Code: "#000000"}}, next.Colors)
}
