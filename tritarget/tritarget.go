// Package tritarget is the render boundary: a laid out diagram as a
// renderer consumes it, in world coordinates, encoded as JSON or msgpack.
package tritarget

import (
	"bytes"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"oss.terrastruct.com/trident/lib/geo"
)

const (
	STEREOTYPE_FONT_SIZE = 10
	TITLE_FONT_SIZE      = 12
	BODY_FONT_SIZE       = 11
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack, "mp":
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unknown output format %q, expected json or msgpack", s)
}

func (f Format) Ext() string {
	if f == FormatMsgpack {
		return ".msgpack"
	}
	return ".json"
}

type Diagram struct {
	Algorithm string   `json:"algorithm,omitempty" msgpack:"algorithm,omitempty"`
	Bounds    geo.Rect `json:"bounds" msgpack:"bounds"`
	Groups    []Group  `json:"groups" msgpack:"groups"`
	Nodes     []Node   `json:"nodes" msgpack:"nodes"`
	Edges     []Edge   `json:"edges" msgpack:"edges"`
	// ImplicitNodes names the nodes created only by edge references, for
	// editor diagnostics.
	ImplicitNodes []string `json:"implicit_nodes" msgpack:"implicit_nodes"`
	Error         *Error   `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Group is a named group. Anonymous groups and the root are not exported.
type Group struct {
	ID     string   `json:"id" msgpack:"id"`
	Bounds geo.Rect `json:"bounds" msgpack:"bounds"`
	HasPos bool     `json:"has_pos" msgpack:"has_pos"`
	// ParentOffset is the world position of the parent group. Subtracting
	// it from Bounds gives the position a drag would write back.
	ParentOffset geo.Point `json:"parent_offset" msgpack:"parent_offset"`
}

type Node struct {
	ID           string          `json:"id" msgpack:"id"`
	Kind         string          `json:"kind" msgpack:"kind"`
	Modifiers    []string        `json:"modifiers" msgpack:"modifiers"`
	Label        *string         `json:"label,omitempty" msgpack:"label,omitempty"`
	BodyLines    []string        `json:"body_lines,omitempty" msgpack:"body_lines,omitempty"`
	TextElements []TextElement   `json:"text_elements" msgpack:"text_elements"`
	Rendering    RenderingConfig `json:"rendering_config" msgpack:"rendering_config"`
	Bounds       geo.Rect        `json:"bounds" msgpack:"bounds"`
	HasPos       bool            `json:"has_pos" msgpack:"has_pos"`
	ParentOffset geo.Point       `json:"parent_offset" msgpack:"parent_offset"`
	Explicit     bool            `json:"explicit" msgpack:"explicit"`
}

type RenderingConfig struct {
	Padding          int `json:"padding" msgpack:"padding"`
	LineHeight       int `json:"line_height" msgpack:"line_height"`
	SeparatorSpacing int `json:"separator_spacing" msgpack:"separator_spacing"`
	CharWidth        int `json:"char_width" msgpack:"char_width"`
}

type TextElementType string

const (
	TextStereotype TextElementType = "stereotype"
	TextTitle      TextElementType = "title"
	TextSeparator  TextElementType = "separator"
	TextBody       TextElementType = "body"
)

// TextElement is one line of a node's box. Y is the text baseline, or the
// line's vertical position for separators, relative to the node's top.
type TextElement struct {
	Type     TextElementType `json:"type" msgpack:"type"`
	Text     string          `json:"text,omitempty" msgpack:"text,omitempty"`
	Y        int             `json:"y" msgpack:"y"`
	FontSize int             `json:"font_size,omitempty" msgpack:"font_size,omitempty"`
	Italic   bool            `json:"italic,omitempty" msgpack:"italic,omitempty"`
}

type Edge struct {
	From string `json:"from" msgpack:"from"`
	To   string `json:"to" msgpack:"to"`
	// Arrow is the canonical arrow name, e.g. extends_right.
	Arrow string  `json:"arrow" msgpack:"arrow"`
	Token string  `json:"token" msgpack:"token"`
	Label *string `json:"label,omitempty" msgpack:"label,omitempty"`
}

type Error struct {
	Message string `json:"message" msgpack:"message"`
}

// NewErrorDiagram returns the output for an input that could not be laid
// out.
func NewErrorDiagram(err error) *Diagram {
	return &Diagram{
		Groups:        []Group{},
		Nodes:         []Node{},
		Edges:         []Edge{},
		ImplicitNodes: []string{},
		Error:         &Error{Message: err.Error()},
	}
}

// Encode writes d in format f. JSON is indented.
func (d *Diagram) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(d)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(d)
	}
	return fmt.Errorf("unknown output format %q", f)
}

func (d *Diagram) Bytes(f Format) ([]byte, error) {
	var buf bytes.Buffer
	err := d.Encode(&buf, f)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decode(r io.Reader, f Format) (*Diagram, error) {
	var d Diagram
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&d)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&d)
	default:
		err = fmt.Errorf("unknown output format %q", f)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// HashID identifies the rendered geometry. Two layouts with the same
// hash draw the same picture.
func (d *Diagram) HashID() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	h := fnv.New32a()
	h.Write(b)
	return fmt.Sprintf("trident-%d", h.Sum32()), nil
}

func (d *Diagram) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

func (d *Diagram) Group(id string) (Group, bool) {
	for _, g := range d.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}
