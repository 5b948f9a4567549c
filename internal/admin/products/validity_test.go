package products

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/husnain417/Steth-admin-Panel/internal/admin/catalog"
)

func scrubSetDraft() Draft {
	return Draft{
		Details: Details{
			Title:       "Scrub Set",
			Description: "Two piece scrub set",
			Price:       "1500",
			Category:    "Scrubs",
			Gender:      "Women",
			Material:    "Cotton",
		},
		Colors:    []string{"Black"},
		Inventory: []InventoryRow{{Color: "Black", Size: "M", Stock: 10}},
	}
}

func TestIsValidScrubSet(t *testing.T) {
	t.Parallel()

	d := scrubSetDraft()
	require.True(t, IsValid(d))

	payload := FormatForAPI(d, catalog.Default())
	require.Equal(t, []ColorPayload{{Name: "Black", Value: "Black", Code: "#000000", Available: true}}, payload.Colors)
	require.Equal(t, []InventoryPayload{{Color: "Black", Size: "M", Stock: 10}}, payload.Inventory)
	require.Equal(t, []SizePayload{{Name: "M", Value: "M", Available: true}}, payload.Sizes)
	require.Equal(t, 1500.0, payload.Price)
}

func TestIsValidRequiresVariants(t *testing.T) {
	t.Parallel()

	noColors := scrubSetDraft()
	noColors.Colors = nil
	require.False(t, IsValid(noColors))

	noInventory := scrubSetDraft()
	noInventory.Inventory = nil
	require.False(t, IsValid(noInventory))
	require.Empty(t, noInventory.SelectedSizes())
}

func TestIsValidRequiresDetails(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*Details){
		"title":           func(d *Details) { d.Title = " " },
		"description":     func(d *Details) { d.Description = "" },
		"price missing":   func(d *Details) { d.Price = "" },
		"price zero":      func(d *Details) { d.Price = "0" },
		"price malformed": func(d *Details) { d.Price = "12abc" },
		"gender":          func(d *Details) { d.Gender = "" },
		"custom category": func(d *Details) { d.Category = catalog.CustomValue; d.CustomCategory = "" },
		"material":        func(d *Details) { d.Material = "" },
	}
	for name, mutate := range cases {
		mutate := mutate
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			d := scrubSetDraft()
			mutate(&d.Details)
			require.False(t, IsValid(d))
		})
	}

	custom := scrubSetDraft()
	custom.Details.Material = catalog.CustomValue
	custom.Details.CustomMaterial = "Bamboo"
	require.True(t, IsValid(custom))
	require.Equal(t, "Bamboo", FormatForAPI(custom, catalog.Default()).Material)
}

func TestCheckSubmittableReportsMissingStock(t *testing.T) {
	t.Parallel()

	d := scrubSetDraft()
	d.Colors = append(d.Colors, "Navy")

	err := CheckSubmittable(d, FlowCreate)
	var missing *MissingStockError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, []string{"Navy"}, missing.Colors)
	require.Contains(t, UserMessage(err), "Navy")

	require.NoError(t, CheckSubmittable(d, FlowUpdate))
}

func TestFormatForAPIIsDeterministic(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	d := scrubSetDraft()
	d.Colors = append(d.Colors, "Mystery")
	d.Inventory = append(d.Inventory, InventoryRow{Color: "Mystery", Size: "xl", Stock: 2})

	first, err := json.Marshal(FormatForAPI(d, cat))
	require.NoError(t, err)
	second, err := json.Marshal(FormatForAPI(d, cat))
	require.NoError(t, err)
	require.Equal(t, first, second)

	payload := FormatForAPI(d, cat)
	require.Equal(t, ColorPayload{Name: "Mystery", Value: "Mystery", Code: "Mystery", Available: true}, payload.Colors[1])
	require.Equal(t, "XL", payload.Inventory[1].Size)
	require.Equal(t, SizePayload{Name: "XL", Value: "XL", Available: true}, payload.Sizes[1])
}
