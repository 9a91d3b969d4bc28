package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/ports"
)

// --- RecordingStore ---

// RecordingStore wraps a SceneStore and records every mutating call in order.
// Reads go straight to the wrapped store.
type RecordingStore struct {
	ports.SceneStore

	mu         sync.Mutex
	calls      []string
	failMethod string
	failError  error
}

// NewRecordingStore wraps store
func NewRecordingStore(store ports.SceneStore) *RecordingStore {
	return &RecordingStore{SceneStore: store}
}

func (m *RecordingStore) record(method, format string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method+" "+fmt.Sprintf(format, args...))
	if m.failMethod == method {
		if m.failError != nil {
			return m.failError
		}
		return fmt.Errorf("%s failed", method)
	}
	return nil
}

func (m *RecordingStore) SetValue(ctx context.Context, node, attr string, value float64) error {
	if err := m.record("SetValue", "%s.%s=%g", node, attr, value); err != nil {
		return err
	}
	return m.SceneStore.SetValue(ctx, node, attr, value)
}

func (m *RecordingStore) SetKeyframe(ctx context.Context, node, attr string, time, value float64, breakdown bool) error {
	if err := m.record("SetKeyframe", "%s.%s@%g=%g bd=%t", node, attr, time, value, breakdown); err != nil {
		return err
	}
	return m.SceneStore.SetKeyframe(ctx, node, attr, time, value, breakdown)
}

func (m *RecordingStore) SetTangentLock(ctx context.Context, node, attr string, time float64, locked bool) error {
	if err := m.record("SetTangentLock", "%s.%s@%g=%t", node, attr, time, locked); err != nil {
		return err
	}
	return m.SceneStore.SetTangentLock(ctx, node, attr, time, locked)
}

func (m *RecordingStore) SetWeightedTangents(ctx context.Context, node, attr string, weighted bool) error {
	if err := m.record("SetWeightedTangents", "%s.%s=%t", node, attr, weighted); err != nil {
		return err
	}
	return m.SceneStore.SetWeightedTangents(ctx, node, attr, weighted)
}

func (m *RecordingStore) SetWeightLock(ctx context.Context, node, attr string, time float64, locked bool) error {
	if err := m.record("SetWeightLock", "%s.%s@%g=%t", node, attr, time, locked); err != nil {
		return err
	}
	return m.SceneStore.SetWeightLock(ctx, node, attr, time, locked)
}

func (m *RecordingStore) SetTangents(ctx context.Context, node, attr string, time float64, edit domain.TangentEdit) error {
	if err := m.record("SetTangents", "%s.%s@%g=%s/%s", node, attr, time, edit.InType, edit.OutType); err != nil {
		return err
	}
	return m.SceneStore.SetTangents(ctx, node, attr, time, edit)
}

func (m *RecordingStore) SetInfinity(ctx context.Context, node, attr, pre, post string) error {
	if err := m.record("SetInfinity", "%s.%s=%s/%s", node, attr, pre, post); err != nil {
		return err
	}
	return m.SceneStore.SetInfinity(ctx, node, attr, pre, post)
}

func (m *RecordingStore) SetLinearUnit(ctx context.Context, unit string) error {
	if err := m.record("SetLinearUnit", "%s", unit); err != nil {
		return err
	}
	return m.SceneStore.SetLinearUnit(ctx, unit)
}

func (m *RecordingStore) SetSelection(ctx context.Context, nodes []string) error {
	if err := m.record("SetSelection", "%v", nodes); err != nil {
		return err
	}
	return m.SceneStore.SetSelection(ctx, nodes)
}

// SetShouldFail makes the named mutating method return err (or a generic error)
func (m *RecordingStore) SetShouldFail(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failMethod = method
	m.failError = err
}

func (m *RecordingStore) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

func (m *RecordingStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.failMethod = ""
	m.failError = nil
}

// --- MockPrompter ---

// MockPrompter answers Confirm from a script. Once the script runs out it
// answers with the fallback.
type MockPrompter struct {
	mu       sync.Mutex
	answers  []bool
	fallback bool
	calls    []string
}

func NewMockPrompter(fallback bool, answers ...bool) *MockPrompter {
	return &MockPrompter{answers: answers, fallback: fallback}
}

func (m *MockPrompter) Confirm(title, message string, defaultYes bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, title)
	if len(m.answers) == 0 {
		return m.fallback
	}
	answer := m.answers[0]
	m.answers = m.answers[1:]
	return answer
}

func (m *MockPrompter) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// --- MockProgress ---

// MockProgress counts ticks and can report cancellation after a number of ticks
type MockProgress struct {
	mu          sync.Mutex
	Title       string
	Max         int
	Ticks       int
	Ended       bool
	cancelAfter int
}

func NewMockProgress() *MockProgress {
	return &MockProgress{cancelAfter: -1}
}

// CancelAfter makes IsCancelled report true once n ticks were seen
func (m *MockProgress) CancelAfter(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelAfter = n
}

func (m *MockProgress) Begin(title string, max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Title = title
	m.Max = max
	m.Ticks = 0
	m.Ended = false
}

func (m *MockProgress) Tick(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ticks += n
}

func (m *MockProgress) IsCancelled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelAfter >= 0 && m.Ticks >= m.cancelAfter
}

func (m *MockProgress) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Ended = true
}
