// Package screen keeps the painted state of every region and notifies
// adapters when it changes.
package screen

import (
	"maps"
	"sync"

	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/view"
)

// Snapshot is a point-in-time copy of the screen. Panels are shared with
// the store and must be treated as read-only.
type Snapshot struct {
	Version  uint64                     `json:"version"`
	Visible  map[models.Module]bool     `json:"visible"`
	Nav      []view.NavItem             `json:"nav"`
	Labels   map[string]string          `json:"labels"`
	VoiceTag string                     `json:"voice_tag"`
	Regions  map[view.Region]view.Panel `json:"regions"`
}

// Active returns the visible modules. The controller keeps exactly one.
func (s Snapshot) Active() []models.Module {
	var out []models.Module
	for _, m := range models.Modules {
		if s.Visible[m] {
			out = append(out, m)
		}
	}
	return out
}

// Label returns the text for key, or key itself when unset.
func (s Snapshot) Label(key string) string {
	if v, ok := s.Labels[key]; ok {
		return v
	}
	return key
}

// Store is a thread-safe Painter.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot
	subs map[int]chan struct{}
	next int
}

// New returns an empty Store.
func New() *Store {
	s := &Store{subs: map[int]chan struct{}{}}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.snap = Snapshot{
		Version: s.snap.Version,
		Visible: map[models.Module]bool{},
		Labels:  map[string]string{},
		Regions: map[view.Region]view.Panel{},
	}
}

// Subscribe returns a channel that receives a signal after each change.
// Signals coalesce; a slow reader sees at least one after the last change.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// update runs fn under the write lock and signals subscribers.
func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	s.snap.Version++
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.mu.Unlock()
}

// SetVisible shows m and hides every other module.
func (s *Store) SetVisible(m models.Module) {
	s.update(func() {
		for _, mod := range models.Modules {
			s.snap.Visible[mod] = mod == m
		}
	})
}

// SetNav replaces the navigation bar.
func (s *Store) SetNav(items []view.NavItem) {
	s.update(func() { s.snap.Nav = append([]view.NavItem(nil), items...) })
}

// SetLabels replaces the static labels.
func (s *Store) SetLabels(labels map[string]string) {
	s.update(func() { s.snap.Labels = maps.Clone(labels) })
}

// SetVoiceTag sets the speech-recognition locale.
func (s *Store) SetVoiceTag(tag string) {
	s.update(func() { s.snap.VoiceTag = tag })
}

// Paint replaces region r.
func (s *Store) Paint(r view.Region, p view.Panel) {
	s.update(func() { s.snap.Regions[r] = p })
}

// Clear empties region r.
func (s *Store) Clear(r view.Region) {
	s.update(func() { delete(s.snap.Regions, r) })
}

// Reset drops everything.
func (s *Store) Reset() {
	s.update(s.reset)
}

// Region returns the panel painted in r.
func (s *Store) Region(r view.Region) (view.Panel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.snap.Regions[r]
	return p, ok
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Version:  s.snap.Version,
		Visible:  maps.Clone(s.snap.Visible),
		Nav:      append([]view.NavItem(nil), s.snap.Nav...),
		Labels:   maps.Clone(s.snap.Labels),
		VoiceTag: s.snap.VoiceTag,
		Regions:  maps.Clone(s.snap.Regions),
	}
}
