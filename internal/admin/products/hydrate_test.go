package products

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

func TestNewUpdateComposerHydratesRecord(t *testing.T) {
	t.Parallel()

	rec := Record{
		ID:          "p-1",
		Name:        "Surgical Cap",
		Description: "Breathable cap",
		Price:       12.5,
		Category:    "Caps",
		Gender:      "Unisex",
		Material:    "Bamboo",
		Colors: []ColorPayload{
			{Name: "Black", Value: "Black", Code: "#000000"},
			{Name: "Wine", Value: "wine", Code: "#722F37"},
		},
		Inventory: []InventoryPayload{
			{Color: "Black", Size: "m", Stock: 3},
			{Color: "Wine", Size: "L", Stock: 2},
			{Color: "Black", Size: "M", Stock: 9},
		},
	}

	c := NewUpdateComposer(catalog.Default(), rec)

	require.Equal(t, FlowUpdate, c.Flow)
	require.Equal(t, "p-1", c.ProductID)
	require.Equal(t, "12.5", c.Draft.Details.Price)
	require.Equal(t, "Caps", c.Draft.Details.Category)
	require.Equal(t, catalog.CustomValue, c.Draft.Details.Material)
	require.Equal(t, "Bamboo", c.Draft.Details.CustomMaterial)

	require.Equal(t, []string{"Black", "wine"}, c.Draft.Colors)
	require.Equal(t, c.Draft.Colors, c.Original)
	require.Equal(t, []InventoryRow{
		{Color: "Black", Size: "M", Stock: 3},
		{Color: "wine", Size: "L", Stock: 2},
	}, c.Draft.Inventory)

	wine, ok := c.Catalog.Color("wine")
	require.True(t, ok)
	require.Equal(t, "#722F37", wine.Code)
	require.True(t, c.Valid())
}
