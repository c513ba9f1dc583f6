// Package pagination computes the truncated page-number strip shown under a
// paginated table: every page when they fit, otherwise the first and last
// page, a window around the current page and ellipsis markers for the gaps.
package pagination

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EllipsisText is how an ellipsis marker renders and encodes.
const EllipsisText = "…"

// Marker is either a page number or an ellipsis.
type Marker struct {
	Page     int
	Ellipsis bool
}

func PageMarker(n int) Marker { return Marker{Page: n} }

func EllipsisMarker() Marker { return Marker{Ellipsis: true} }

func (m Marker) String() string {
	if m.Ellipsis {
		return EllipsisText
	}
	return strconv.Itoa(m.Page)
}

// MarshalJSON encodes page markers as numbers and ellipses as "…".
func (m Marker) MarshalJSON() ([]byte, error) {
	if m.Ellipsis {
		return json.Marshal(EllipsisText)
	}
	return json.Marshal(m.Page)
}

func (m *Marker) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != EllipsisText {
			return fmt.Errorf("pagination: unexpected marker %q", s)
		}
		*m = EllipsisMarker()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("pagination: decode marker: %w", err)
	}
	*m = PageMarker(n)
	return nil
}

// Config parameterises the window. Zero thresholds and radius are derived
// from MaxVisibleSlots.
type Config struct {
	// MaxVisibleSlots is the number of entries, ellipses included, shown
	// before truncation kicks in.
	MaxVisibleSlots int `mapstructure:"max_visible_slots"`
	// StartThreshold: pages 1..StartThreshold render the start zone.
	StartThreshold int `mapstructure:"start_threshold"`
	// EndThreshold: the last EndThreshold pages render the end zone.
	EndThreshold int `mapstructure:"end_threshold"`
	// Radius is the number of pages shown on each side of the current page
	// in the middle zone.
	Radius int `mapstructure:"radius"`
}

func DefaultConfig() Config {
	return Config{MaxVisibleSlots: 7}
}

func (c Config) withDefaults() Config {
	if c.Radius == 0 {
		c.Radius = (c.MaxVisibleSlots - 5) / 2
	}
	if c.StartThreshold == 0 {
		c.StartThreshold = c.MaxVisibleSlots - 4
	}
	if c.EndThreshold == 0 {
		c.EndThreshold = c.MaxVisibleSlots - 4
	}
	return c
}

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.MaxVisibleSlots < 5:
		return fmt.Errorf("pagination: max visible slots must be at least 5, got %d", c.MaxVisibleSlots)
	case c.Radius < 0:
		return fmt.Errorf("pagination: radius must not be negative, got %d", c.Radius)
	case 2*c.Radius+5 > c.MaxVisibleSlots:
		return fmt.Errorf("pagination: radius %d does not fit in %d slots", c.Radius, c.MaxVisibleSlots)
	case c.StartThreshold < 1 || c.EndThreshold < 1:
		return fmt.Errorf("pagination: thresholds must be positive")
	case c.StartThreshold > c.MaxVisibleSlots-2 || c.EndThreshold > c.MaxVisibleSlots-2:
		// edge zones render slots-2 pages, a larger threshold would hide the current page
		return fmt.Errorf("pagination: thresholds must not exceed %d for %d slots", c.MaxVisibleSlots-2, c.MaxVisibleSlots)
	}
	return nil
}

type Calculator struct {
	cfg Config
}

func New(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg.withDefaults()}, nil
}

// MustNew is New for configurations known to be valid.
func MustNew(cfg Config) *Calculator {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// Compute returns the window for totalItems split into pages of pageSize with
// currentPage selected. currentPage is clamped into range. The result is empty
// when there are no pages.
func (c *Calculator) Compute(totalItems, pageSize, currentPage int) []Marker {
	if pageSize <= 0 || totalItems <= 0 {
		return []Marker{}
	}
	totalPages := (totalItems + pageSize - 1) / pageSize

	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	slots := c.cfg.MaxVisibleSlots
	if totalPages <= slots {
		return pageRange(1, totalPages)
	}

	switch {
	case currentPage <= c.cfg.StartThreshold:
		out := pageRange(1, slots-2)
		out = append(out, EllipsisMarker(), PageMarker(totalPages))
		return out
	case currentPage > totalPages-c.cfg.EndThreshold:
		out := []Marker{PageMarker(1), EllipsisMarker()}
		return append(out, pageRange(totalPages-(slots-2)+1, totalPages)...)
	}

	lo := currentPage - c.cfg.Radius
	hi := currentPage + c.cfg.Radius
	if lo < 2 {
		lo = 2
	}
	if hi > totalPages-1 {
		hi = totalPages - 1
	}

	out := []Marker{PageMarker(1)}
	if lo > 2 {
		out = append(out, EllipsisMarker())
	}
	out = append(out, pageRange(lo, hi)...)
	if hi < totalPages-1 {
		out = append(out, EllipsisMarker())
	}
	return append(out, PageMarker(totalPages))
}

func pageRange(from, to int) []Marker {
	if to < from {
		return []Marker{}
	}
	out := make([]Marker, 0, to-from+1)
	for p := from; p <= to; p++ {
		out = append(out, PageMarker(p))
	}
	return out
}
