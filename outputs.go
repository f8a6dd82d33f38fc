package nativeci

import (
	"sort"
	"sync"
)

// Output names written by the steps.
const (
	OutputArtifactName = "artifact-name"
	OutputArtifactID   = "artifact-id"
	OutputArtifactURL  = "artifact-url"
	OutputArtifactIDs  = "artifact-ids"
	OutputHash         = "hash"
	OutputCommentID    = "comment-id"
	OutputDeletedIDs   = "deleted-ids"
)

// Outputs receives step outputs. *githubactions.Action satisfies it.
type Outputs interface {
	SetOutput(name, value string)
	AddMask(value string)
}

// MemoryOutputs collects outputs in memory. Used by tests and by the CLI
// when it runs outside of a runner.
type MemoryOutputs struct {
	mu     sync.Mutex
	values map[string]string
	masks  []string
}

// NewMemoryOutputs creates an empty output sink.
func NewMemoryOutputs() *MemoryOutputs {
	return &MemoryOutputs{values: make(map[string]string)}
}

// SetOutput implements Outputs.
func (m *MemoryOutputs) SetOutput(name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
}

// AddMask implements Outputs.
func (m *MemoryOutputs) AddMask(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masks = append(m.masks, value)
}

// Get returns an output and whether it was set.
func (m *MemoryOutputs) Get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[name]
	return v, ok
}

// Names returns the set output names, sorted.
func (m *MemoryOutputs) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.values))
	for name := range m.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Masks returns the values registered as secrets.
func (m *MemoryOutputs) Masks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.masks...)
}
