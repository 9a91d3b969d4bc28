package scene

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
)

const timeTolerance = 1e-9

// Store is a SceneStore backed by a YAML scene document
type Store struct {
	mu   sync.RWMutex
	path string
	doc  *Document

	nodes   map[string]*Node
	parents map[string]string
	order   []string
}

// Ensure it implements the interface
var _ ports.SceneStore = (*Store)(nil)

// New creates a store over an in-memory document
func New(doc *Document, path string) *Store {
	if doc.Unit == "" {
		doc.Unit = defaultUnit
	}
	s := &Store{path: path, doc: doc}
	s.reindex()
	return s
}

// Load reads a scene document from fs
func Load(fs afero.Fs, path string) (*Store, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}

	return New(&doc, path), nil
}

// Save writes the document back to path
func (s *Store) Save(fs afero.Fs, path string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := yaml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	return afero.WriteFile(fs, path, data, 0644)
}

// Document returns the underlying document
func (s *Store) Document() *Document {
	return s.doc
}

// Nodes returns every long name in traversal order
func (s *Store) Nodes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Store) reindex() {
	s.nodes = make(map[string]*Node)
	s.parents = make(map[string]string)
	s.order = nil

	var walk func(parent string, nodes []*Node)
	walk = func(parent string, nodes []*Node) {
		for _, n := range nodes {
			long := parent + domain.HierarchySeparator + n.Name
			s.nodes[long] = n
			s.parents[long] = parent
			s.order = append(s.order, long)
			walk(long, n.Children)
		}
	}
	walk("", s.doc.Nodes)
}

func (s *Store) attribute(node, attr string) (*Attribute, error) {
	n, ok := s.nodes[node]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", node)
	}
	for _, a := range n.Attributes {
		if a.matches(attr) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("attribute not found: %s", domain.ChannelKey(node, attr))
}

func (s *Store) curve(node, attr string) (*domain.AnimData, error) {
	a, err := s.attribute(node, attr)
	if err != nil {
		return nil, err
	}
	if a.Curve == nil {
		return nil, fmt.Errorf("no animation curve on %s", domain.ChannelKey(node, attr))
	}
	return a.Curve, nil
}

func keyAt(curve *domain.AnimData, time float64) (*domain.Keyframe, error) {
	for i := range curve.Keys {
		if math.Abs(curve.Keys[i].Time-time) <= timeTolerance {
			return &curve.Keys[i], nil
		}
	}
	return nil, fmt.Errorf("no key at time %g", time)
}

// Resolve accepts a full path, a partial path or a short name. Names that
// match more than one node do not resolve.
func (s *Store) Resolve(ctx context.Context, name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		return "", false
	}
	if strings.HasPrefix(name, domain.HierarchySeparator) {
		_, ok := s.nodes[name]
		return name, ok
	}

	suffix := domain.HierarchySeparator + name
	found := ""
	for _, long := range s.order {
		if strings.HasSuffix(long, suffix) {
			if found != "" {
				return "", false
			}
			found = long
		}
	}
	return found, found != ""
}

func (s *Store) HasAttribute(ctx context.Context, node, attr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, err := s.attribute(node, attr)
	return err == nil
}

func (s *Store) HasParent(ctx context.Context, node string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parents[node] != ""
}

func (s *Store) Descendants(ctx context.Context, node string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[node]; !ok {
		return nil, fmt.Errorf("node not found: %s", node)
	}
	prefix := node + domain.HierarchySeparator
	var out []string
	for _, long := range s.order {
		if strings.HasPrefix(long, prefix) {
			out = append(out, long)
		}
	}
	return out, nil
}

func (s *Store) AnimCurves(ctx context.Context, node string) ([]domain.CurveBinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[node]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", node)
	}
	var out []domain.CurveBinding
	for _, a := range n.Attributes {
		if a.Curve == nil {
			continue
		}
		out = append(out, domain.CurveBinding{
			Curve:     domain.ChannelKey(node, a.Name),
			Node:      node,
			Attribute: a.Name,
		})
	}
	return out, nil
}

func (s *Store) AnimatableAttributes(ctx context.Context, node string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[node]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", node)
	}
	var out []string
	for _, a := range n.Attributes {
		if a.IsAnimatable() {
			out = append(out, a.Name)
		}
	}
	return out, nil
}

func (s *Store) IsAnimatable(ctx context.Context, node, attr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := s.attribute(node, attr)
	return err == nil && a.IsAnimatable()
}

func (s *Store) AttributeShortName(ctx context.Context, node, attr string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := s.attribute(node, attr)
	if err != nil {
		return attr
	}
	return a.ShortName()
}

// CurveData returns a copy of the curve named "{node}.{attribute}"
func (s *Store) CurveData(ctx context.Context, curve string) (domain.AnimData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := strings.LastIndex(curve, ".")
	if i < 0 {
		return domain.AnimData{}, fmt.Errorf("invalid curve name: %s", curve)
	}
	c, err := s.curve(curve[:i], curve[i+1:])
	if err != nil {
		return domain.AnimData{}, err
	}
	data := *c
	data.Keys = append([]domain.Keyframe(nil), c.Keys...)
	return data, nil
}

func (s *Store) IsKeyed(ctx context.Context, node, attr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := s.attribute(node, attr)
	return err == nil && a.Curve != nil && len(a.Curve.Keys) > 0
}

func (s *Store) Value(ctx context.Context, node, attr string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := s.attribute(node, attr)
	if err != nil {
		return 0, err
	}
	return a.Value, nil
}

func (s *Store) SetValue(ctx context.Context, node, attr string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.attribute(node, attr)
	if err != nil {
		return err
	}
	if a.Locked {
		return fmt.Errorf("attribute is locked: %s", domain.ChannelKey(node, attr))
	}
	a.Value = value
	return nil
}

func (s *Store) IsLocked(ctx context.Context, node, attr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := s.attribute(node, attr)
	return err == nil && a.Locked
}

func (s *Store) HasIncomingConnection(ctx context.Context, node, attr string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, err := s.attribute(node, attr)
	return err == nil && a.Connected
}

// SetKeyframe inserts a key or replaces the value of the key at the same time.
// The curve is created on first use and kept sorted by time.
func (s *Store) SetKeyframe(ctx context.Context, node, attr string, time, value float64, breakdown bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.attribute(node, attr)
	if err != nil {
		return err
	}
	if a.Curve == nil {
		a.Curve = &domain.AnimData{PreInfinity: defaultInfinity, PostInfinity: defaultInfinity}
	}
	if key, err := keyAt(a.Curve, time); err == nil {
		key.Value = value
		key.Breakdown = breakdown
		return nil
	}

	a.Curve.Keys = append(a.Curve.Keys, domain.Keyframe{
		Time:           time,
		Value:          value,
		InTangentType:  defaultTangent,
		OutTangentType: defaultTangent,
		TangentsLocked: true,
		WeightLocked:   true,
		Breakdown:      breakdown,
	})
	sort.SliceStable(a.Curve.Keys, func(i, j int) bool {
		return a.Curve.Keys[i].Time < a.Curve.Keys[j].Time
	})
	return nil
}

func (s *Store) editKey(node, attr string, time float64, edit func(*domain.Keyframe)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.curve(node, attr)
	if err != nil {
		return err
	}
	key, err := keyAt(c, time)
	if err != nil {
		return fmt.Errorf("%s: %w", domain.ChannelKey(node, attr), err)
	}
	edit(key)
	return nil
}

func (s *Store) SetTangentLock(ctx context.Context, node, attr string, time float64, locked bool) error {
	return s.editKey(node, attr, time, func(k *domain.Keyframe) {
		k.TangentsLocked = locked
	})
}

func (s *Store) SetWeightLock(ctx context.Context, node, attr string, time float64, locked bool) error {
	return s.editKey(node, attr, time, func(k *domain.Keyframe) {
		k.WeightLocked = locked
	})
}

func (s *Store) SetTangents(ctx context.Context, node, attr string, time float64, edit domain.TangentEdit) error {
	return s.editKey(node, attr, time, func(k *domain.Keyframe) {
		if edit.InType != "" {
			k.InTangentType = edit.InType
		}
		if edit.OutType != "" {
			k.OutTangentType = edit.OutType
		}
		if edit.InAngle != nil {
			k.InAngle = *edit.InAngle
		}
		if edit.InWeight != nil {
			k.InWeight = *edit.InWeight
		}
		if edit.OutAngle != nil {
			k.OutAngle = *edit.OutAngle
		}
		if edit.OutWeight != nil {
			k.OutWeight = *edit.OutWeight
		}
	})
}

func (s *Store) SetWeightedTangents(ctx context.Context, node, attr string, weighted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.curve(node, attr)
	if err != nil {
		return err
	}
	c.Weighted = weighted
	return nil
}

func (s *Store) SetInfinity(ctx context.Context, node, attr, pre, post string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.curve(node, attr)
	if err != nil {
		return err
	}
	if pre != "" {
		c.PreInfinity = pre
	}
	if post != "" {
		c.PostInfinity = post
	}
	return nil
}

func (s *Store) LinearUnit(ctx context.Context) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Unit
}

func (s *Store) SetLinearUnit(ctx context.Context, unit string) error {
	if !linearUnits[unit] {
		return fmt.Errorf("unknown linear unit: %s", unit)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Unit = unit
	return nil
}

// Selection returns the selected nodes as long names. Entries that no longer
// resolve are dropped.
func (s *Store) Selection(ctx context.Context) []string {
	s.mu.RLock()
	names := append([]string(nil), s.doc.Selection...)
	s.mu.RUnlock()

	var out []string
	for _, name := range names {
		if long, ok := s.Resolve(ctx, name); ok {
			out = append(out, long)
		}
	}
	return out
}

func (s *Store) SetSelection(ctx context.Context, nodes []string) error {
	resolved := make([]string, 0, len(nodes))
	for _, name := range nodes {
		long, ok := s.Resolve(ctx, name)
		if !ok {
			return fmt.Errorf("node not found: %s", name)
		}
		resolved = append(resolved, long)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Selection = resolved
	return nil
}

func (s *Store) FilePath(ctx context.Context) string {
	return s.path
}
