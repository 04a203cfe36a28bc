package forms

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"github.com/podkrepi-bg/admin/internal/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memStore struct {
	mu     sync.Mutex
	states map[string][]byte
}

func newMemStore() *memStore { return &memStore{states: make(map[string][]byte)} }

func (m *memStore) Save(_ context.Context, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[st.ID] = raw
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.states[id]
	if !ok {
		return nil, ErrFormExpired
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

func (m *memStore) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[id]
	return ok, nil
}

type memGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemGuard() *memGuard { return &memGuard{held: make(map[string]bool)} }

func (g *memGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *memGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.held, key)
	return nil
}

func (g *memGuard) Held(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held[key], nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	shown []shared.Notification
}

func (n *recordingNotifier) Show(_ context.Context, note shared.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, note)
}

func (n *recordingNotifier) all() []shared.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]shared.Notification(nil), n.shown...)
}

type countingInvalidator struct {
	mu        sync.Mutex
	resources []string
}

func (c *countingInvalidator) Invalidate(_ context.Context, resource string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, resource)
	return nil
}

type stubFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	options map[string][]Option
	errs    map[string]error
}

func (f *stubFetcher) FetchOptions(_ context.Context, kind string) ([]Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[kind]++
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	return f.options[kind], nil
}
