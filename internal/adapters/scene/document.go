package scene

import (
	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
)

// Document is the YAML layout of a scene file
type Document struct {
	Unit      string   `yaml:"unit"`
	Selection []string `yaml:"selection,omitempty"`
	Nodes     []*Node  `yaml:"nodes"`
}

// Node is one transform in the hierarchy
type Node struct {
	Name       string       `yaml:"name"`
	Attributes []*Attribute `yaml:"attributes,omitempty"`
	Children   []*Node      `yaml:"children,omitempty"`
}

// Attribute is a numeric channel of a node, optionally driven by a curve
type Attribute struct {
	Name       string           `yaml:"name"`
	Short      string           `yaml:"short,omitempty"`
	Value      float64          `yaml:"value"`
	Locked     bool             `yaml:"locked,omitempty"`
	Animatable *bool            `yaml:"animatable,omitempty"`
	Connected  bool             `yaml:"connected,omitempty"`
	Curve      *domain.AnimData `yaml:"curve,omitempty"`
}

// IsAnimatable defaults to true when the document does not say otherwise
func (a *Attribute) IsAnimatable() bool {
	return a.Animatable == nil || *a.Animatable
}

// ShortName falls back to the long name
func (a *Attribute) ShortName() string {
	if a.Short != "" {
		return a.Short
	}
	return a.Name
}

func (a *Attribute) matches(name string) bool {
	return a.Name == name || (a.Short != "" && a.Short == name)
}

// linearUnits are the units SetLinearUnit accepts
var linearUnits = map[string]bool{
	"mm": true, "cm": true, "m": true, "km": true,
	"in": true, "ft": true, "yd": true, "mi": true,
}

const defaultUnit = "cm"

const (
	defaultTangent  = "spline"
	defaultInfinity = "constant"
)
