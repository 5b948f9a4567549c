package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"
)

// CustomValue is the sentinel select value meaning "use the free-text field instead".
const CustomValue = "custom"

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	// ErrInvalidHexCode indicates a custom color code that is not of the form #RRGGBB.
	ErrInvalidHexCode = errors.New("catalog: invalid hex color code")
	// ErrEmptyName indicates a custom color submitted without a usable name.
	ErrEmptyName = errors.New("catalog: color name is required")
	// ErrColorExists indicates a custom color whose name collides with an existing option.
	ErrColorExists = errors.New("catalog: color already exists")
)

var hexCodePattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var labelPolicy = bluemonday.StrictPolicy()

// newCustomID generates identifiers for staff-defined colors.
var newCustomID = func() string {
	return "custom-" + strings.ToLower(ulid.Make().String())
}

// ColorOption describes a selectable color.
type ColorOption struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Value  string `json:"value" yaml:"value"`
	Code   string `json:"code" yaml:"code"`
	Custom bool   `json:"custom,omitempty" yaml:"-"`
}

// SizeOption describes a selectable garment size.
type SizeOption struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Option is a generic select option for categories, materials and genders.
type Option struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Catalog holds the reference data offered by the composer. Values are
// treated as immutable: operations that extend the catalog return a copy.
type Catalog struct {
	Colors     []ColorOption `json:"colors" yaml:"colors"`
	Sizes      []SizeOption  `json:"sizes" yaml:"sizes"`
	Categories []Option      `json:"categories" yaml:"categories"`
	Materials  []Option      `json:"materials" yaml:"materials"`
	Genders    []Option      `json:"genders" yaml:"genders"`
}

// Default returns the catalog embedded in the binary.
func Default() Catalog {
	cat, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded catalog invalid: %v", err))
	}
	return cat
}

// Load decodes a YAML catalog from r.
func Load(r io.Reader) (Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: read: %w", err)
	}
	return Parse(raw)
}

// LoadFile reads a YAML catalog override from disk.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Parse decodes YAML catalog data and validates every color code.
func Parse(raw []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return Catalog{}, fmt.Errorf("catalog: decode: %w", err)
	}
	if len(cat.Colors) == 0 || len(cat.Sizes) == 0 {
		return Catalog{}, errors.New("catalog: colors and sizes are required")
	}
	for i, c := range cat.Colors {
		if !ValidHexCode(c.Code) {
			return Catalog{}, fmt.Errorf("catalog: color %q: %w", c.Name, ErrInvalidHexCode)
		}
		if c.Value == "" {
			cat.Colors[i].Value = c.Name
		}
		if c.ID == "" {
			cat.Colors[i].ID = strings.ToLower(strings.ReplaceAll(c.Name, " ", "-"))
		}
	}
	return cat, nil
}

// ValidHexCode reports whether code is a six digit hex color such as #1A2B3C.
func ValidHexCode(code string) bool {
	return hexCodePattern.MatchString(code)
}

const maxCleanPasses = 8

// CleanLabel strips markup and surrounding whitespace from staff-entered
// labels. Entity-encoded markup is decoded and stripped too, so the result
// is plain text that never decodes into a tag.
func CleanLabel(raw string) string {
	label := raw
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(labelPolicy.Sanitize(label))
		if next == label {
			return strings.TrimSpace(label)
		}
		label = next
	}
	// Still changing: drop what could form a tag.
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(label))
}

// Clone returns a deep copy of the catalog.
func (c Catalog) Clone() Catalog {
	return Catalog{
		Colors:     append([]ColorOption(nil), c.Colors...),
		Sizes:      append([]SizeOption(nil), c.Sizes...),
		Categories: append([]Option(nil), c.Categories...),
		Materials:  append([]Option(nil), c.Materials...),
		Genders:    append([]Option(nil), c.Genders...),
	}
}

// Color resolves a color by value, then by name.
func (c Catalog) Color(key string) (ColorOption, bool) {
	for _, opt := range c.Colors {
		if opt.Value == key {
			return opt, true
		}
	}
	for _, opt := range c.Colors {
		if opt.Name == key {
			return opt, true
		}
	}
	return ColorOption{}, false
}

// ResolveColor returns the catalog entry for key or a fallback that reuses
// the key for name, value and code.
func (c Catalog) ResolveColor(key string) ColorOption {
	if opt, ok := c.Color(key); ok {
		return opt
	}
	return ColorOption{Name: key, Value: key, Code: key}
}

// Size resolves a size by name or value, ignoring case.
func (c Catalog) Size(key string) (SizeOption, bool) {
	key = strings.TrimSpace(key)
	for _, opt := range c.Sizes {
		if strings.EqualFold(opt.Name, key) || strings.EqualFold(opt.Value, key) {
			return opt, true
		}
	}
	return SizeOption{}, false
}

// Category looks up a category option by value.
func (c Catalog) Category(value string) (Option, bool) { return findOption(c.Categories, value) }

// Material looks up a material option by value.
func (c Catalog) Material(value string) (Option, bool) { return findOption(c.Materials, value) }

// Gender looks up a gender option by value.
func (c Catalog) Gender(value string) (Option, bool) { return findOption(c.Genders, value) }

// AddCustomColor validates a staff-defined color and returns an extended
// catalog together with the new option. The receiver is left untouched.
func (c Catalog) AddCustomColor(name, code string) (Catalog, ColorOption, error) {
	name = CleanLabel(name)
	code = strings.TrimSpace(code)
	if name == "" {
		return c, ColorOption{}, ErrEmptyName
	}
	if !ValidHexCode(code) {
		return c, ColorOption{}, ErrInvalidHexCode
	}
	for _, opt := range c.Colors {
		if strings.EqualFold(opt.Name, name) || strings.EqualFold(opt.Value, name) {
			return c, ColorOption{}, fmt.Errorf("%w: %s", ErrColorExists, opt.Name)
		}
	}

	opt := ColorOption{
		ID:     newCustomID(),
		Name:   name,
		Value:  name,
		Code:   code,
		Custom: true,
	}
	next := c.Clone()
	next.Colors = append(next.Colors, opt)
	return next, opt, nil
}

// WithColors returns a copy of the catalog that also offers the provided
// colors. Entries whose name or value is already known are skipped.
func (c Catalog) WithColors(colors ...ColorOption) Catalog {
	next := c.Clone()
	for _, opt := range colors {
		if opt.Name == "" && opt.Value == "" {
			continue
		}
		if opt.Value == "" {
			opt.Value = opt.Name
		}
		if opt.Name == "" {
			opt.Name = opt.Value
		}
		if _, ok := next.Color(opt.Value); ok {
			continue
		}
		if _, ok := next.Color(opt.Name); ok {
			continue
		}
		if opt.ID == "" {
			opt.ID = newCustomID()
		}
		next.Colors = append(next.Colors, opt)
	}
	return next
}

func findOption(options []Option, value string) (Option, bool) {
	for _, opt := range options {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}
