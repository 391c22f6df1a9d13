package display

import (
	"sort"
	"sync"
)

// Registry holds running playback sessions per TV (thread-safe).
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	newSession func(tvID string) *Session
}

// NewRegistry creates a registry; newSession builds the session for a TV on first Start.
func NewRegistry(newSession func(tvID string) *Session) *Registry {
	return &Registry{sessions: make(map[string]*Session), newSession: newSession}
}

// Start starts the session for tvID if not already running.
func (reg *Registry) Start(tvID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.sessions[tvID] != nil {
		return
	}
	session := reg.newSession(tvID)
	reg.sessions[tvID] = session
	session.Start()
}

// Stop stops the session for tvID and removes it from the registry.
func (reg *Registry) Stop(tvID string) {
	reg.mu.Lock()
	session := reg.sessions[tvID]
	delete(reg.sessions, tvID)
	reg.mu.Unlock()
	if session != nil {
		session.Stop()
	}
}

// StopAll stops every session.
func (reg *Registry) StopAll() {
	for _, id := range reg.Running() {
		reg.Stop(id)
	}
}

// Reload signals the session for tvID to re-fetch its queue.
func (reg *Registry) Reload(tvID string) {
	reg.mu.RLock()
	session := reg.sessions[tvID]
	reg.mu.RUnlock()
	if session != nil {
		session.Reload()
	}
}

// Running returns the ids of TVs with a live session, sorted.
func (reg *Registry) Running() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ids := make([]string, 0, len(reg.sessions))
	for id := range reg.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
