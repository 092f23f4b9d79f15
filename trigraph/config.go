package trigraph

import (
	"fmt"

	"oss.terrastruct.com/trident/lib/geo"
)

// Config is read only during a layout call.
type Config struct {
	// GroupPadding is the space between a group's border and its children.
	GroupPadding int `json:"group_padding" toml:"group_padding"`
	// Gap is the minimum spacing between siblings.
	Gap int `json:"gap" toml:"gap"`
	// MaxRowW is the width at which packed rows wrap.
	MaxRowW int `json:"max_row_w" toml:"max_row_w"`
	// ClassSize is the default size of class-like nodes.
	ClassSize geo.Size `json:"class_size" toml:"class_size"`
	// NodeSize is the default size of plain shape nodes.
	NodeSize geo.Size `json:"node_size" toml:"node_size"`
	// MinGroupSize is used for empty groups and unknown group bounds.
	MinGroupSize  geo.Size      `json:"min_group_size" toml:"min_group_size"`
	NodeRendering NodeRendering `json:"node_rendering" toml:"node_rendering"`
}

// NodeRendering mirrors the metrics the front end draws node bodies with,
// so content based sizes match what gets rendered.
type NodeRendering struct {
	Padding          int `json:"padding" toml:"padding"`
	LineHeight       int `json:"line_height" toml:"line_height"`
	SeparatorSpacing int `json:"separator_spacing" toml:"separator_spacing"`
	CharWidth        int `json:"char_width" toml:"char_width"`
}

func DefaultConfig() *Config {
	return &Config{
		GroupPadding: 24,
		Gap:          24,
		MaxRowW:      1000,
		ClassSize:    geo.NewSize(220, 120),
		NodeSize:     geo.NewSize(80, 80),
		MinGroupSize: geo.NewSize(200, 120),
		NodeRendering: NodeRendering{
			Padding:          8,
			LineHeight:       14,
			SeparatorSpacing: 10,
			CharWidth:        7,
		},
	}
}

func (c *Config) Validate() error {
	if c.GroupPadding < 0 {
		return fmt.Errorf("group_padding must not be negative, got %d", c.GroupPadding)
	}
	if c.Gap < 0 {
		return fmt.Errorf("gap must not be negative, got %d", c.Gap)
	}
	if c.MaxRowW <= 0 {
		return fmt.Errorf("max_row_w must be positive, got %d", c.MaxRowW)
	}
	sizes := []struct {
		name string
		size geo.Size
	}{
		{"class_size", c.ClassSize},
		{"node_size", c.NodeSize},
		{"min_group_size", c.MinGroupSize},
	}
	for _, s := range sizes {
		if s.size.W <= 0 || s.size.H <= 0 {
			return fmt.Errorf("%s must be positive, got %v", s.name, s.size)
		}
	}
	r := c.NodeRendering
	if r.Padding < 0 || r.LineHeight <= 0 || r.SeparatorSpacing < 0 || r.CharWidth < 0 {
		return fmt.Errorf("invalid node_rendering %+v", r)
	}
	return nil
}
