package widget

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrUnknownInstance = errors.New("unknown widget instance")

// DefaultMaxInstances bounds how many preview widget states are remembered.
const DefaultMaxInstances = 10000

// ViewState is the local state of one preview widget. It starts collapsed and
// is only ever moved to expanded.
type ViewState struct {
	Expanded bool
}

func (v *ViewState) Expand() { v.Expanded = true }

// Instances keeps the ViewState of preview widgets that left their initial
// collapsed state, oldest evicted first. A collapsed widget costs nothing.
type Instances struct {
	mu     sync.Mutex
	states map[string]*ViewState
	order  []string
	limit  int
}

func NewInstances(limit int) *Instances {
	if limit <= 0 {
		limit = DefaultMaxInstances
	}
	return &Instances{
		states: make(map[string]*ViewState),
		limit:  limit,
	}
}

// New returns the id of a fresh collapsed widget. Nothing is recorded until
// the widget is expanded.
func (in *Instances) New() string {
	return uuid.NewString()
}

// Valid reports whether id could have come from New.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (in *Instances) Get(id string) (ViewState, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	st, ok := in.states[id]
	if !ok {
		return ViewState{}, false
	}
	return *st, true
}

// Resolve returns id and its state. A well-formed id that was never expanded
// is collapsed. Anything else gets a fresh id.
func (in *Instances) Resolve(id string) (string, ViewState) {
	if !Valid(id) {
		return in.New(), ViewState{}
	}
	st, _ := in.Get(id)
	return id, st
}

// Expand marks id expanded. Expanding twice is a no-op.
func (in *Instances) Expand(id string) error {
	if !Valid(id) {
		return ErrUnknownInstance
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	if st, ok := in.states[id]; ok {
		st.Expand()
		return nil
	}
	for len(in.order) >= in.limit {
		delete(in.states, in.order[0])
		in.order = in.order[1:]
	}
	st := &ViewState{}
	st.Expand()
	in.states[id] = st
	in.order = append(in.order, id)
	return nil
}

func (in *Instances) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.states)
}
