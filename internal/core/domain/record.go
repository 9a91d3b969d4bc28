package domain

import "strings"

// FixedTangent is the tangent type tag that carries an explicit angle and weight
const FixedTangent = "fixed"

// HierarchySeparator separates the segments of a full node path ("|root|arm|hand")
const HierarchySeparator = "|"

// RecordKind tells animated curves apart from static attribute values
type RecordKind int

const (
	RecordAnimated RecordKind = iota
	RecordStatic
)

// String returns the keyword used for the kind in the file format
func (k RecordKind) String() string {
	switch k {
	case RecordStatic:
		return "static"
	default:
		return "anim"
	}
}

// Keyframe is a single key on an animation curve.
// Angle/weight pairs are only meaningful when the matching tangent type is fixed.
type Keyframe struct {
	Time           float64 `yaml:"time"`
	Value          float64 `yaml:"value"`
	InTangentType  string  `yaml:"in_tangent"`
	OutTangentType string  `yaml:"out_tangent"`
	TangentsLocked bool    `yaml:"tangents_locked"`
	WeightLocked   bool    `yaml:"weight_locked"`
	Breakdown      bool    `yaml:"breakdown,omitempty"`
	InAngle        float64 `yaml:"in_angle,omitempty"`
	InWeight       float64 `yaml:"in_weight,omitempty"`
	OutAngle       float64 `yaml:"out_angle,omitempty"`
	OutWeight      float64 `yaml:"out_weight,omitempty"`
}

// HasFixedIn reports whether the in tangent carries an angle/weight pair
func (k Keyframe) HasFixedIn() bool {
	return k.InTangentType == FixedTangent
}

// HasFixedOut reports whether the out tangent carries an angle/weight pair
func (k Keyframe) HasFixedOut() bool {
	return k.OutTangentType == FixedTangent
}

// AnimData is the curve-level payload of an animated record
type AnimData struct {
	Weighted     bool       `yaml:"weighted"`
	PreInfinity  string     `yaml:"pre_infinity"`
	PostInfinity string     `yaml:"post_infinity"`
	Keys         []Keyframe `yaml:"keys"`
}

// AnimationRecord is one exported attribute: either a keyed curve or a static value
type AnimationRecord struct {
	Kind           RecordKind
	ShortAttribute string
	LongAttribute  string
	NodePath       string
	HasParent      bool

	// StaticValue is only set for RecordStatic
	StaticValue float64

	// Anim is only set for RecordAnimated
	Anim *AnimData
	// HasKeysBlock is false when a parsed anim block never opened "keys {"
	HasKeysBlock bool
}

// Attribute returns the attribute name used to address the scene
func (r AnimationRecord) Attribute() string {
	if r.LongAttribute != "" {
		return r.LongAttribute
	}
	return r.ShortAttribute
}

// ChannelKey returns the "{node}.{attribute}" string used by channel scope matching
func ChannelKey(node, attribute string) string {
	return node + "." + attribute
}

// ShortName returns the last segment of a hierarchy path
func ShortName(path string) string {
	parts := strings.Split(path, HierarchySeparator)
	return parts[len(parts)-1]
}

// CurveBinding ties an animation curve to the attribute it drives
type CurveBinding struct {
	Curve     string
	Node      string
	Attribute string
}

// TangentEdit carries the tangent types and fixed angle/weight values applied to one key
type TangentEdit struct {
	InType    string
	OutType   string
	InAngle   *float64
	InWeight  *float64
	OutAngle  *float64
	OutWeight *float64
}

// TangentEditFor builds the tangent edit for a key, only filling the fixed sides
func TangentEditFor(k Keyframe) TangentEdit {
	edit := TangentEdit{
		InType:  k.InTangentType,
		OutType: k.OutTangentType,
	}
	if k.HasFixedIn() {
		inAngle, inWeight := k.InAngle, k.InWeight
		edit.InAngle = &inAngle
		edit.InWeight = &inWeight
	}
	if k.HasFixedOut() {
		outAngle, outWeight := k.OutAngle, k.OutWeight
		edit.OutAngle = &outAngle
		edit.OutWeight = &outWeight
	}
	return edit
}
