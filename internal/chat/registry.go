// Package chat implements the experimental chat feature: an in-memory room
// registry plus a WebSocket hub that fans events out to room members.
// Nothing here is persisted; a restart discards every room and its history.
package chat

import "sync"

// ChatMessage is one entry of a room's in-memory history.
type ChatMessage struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

type room struct {
	members  int
	messages []ChatMessage
}

// Registry tracks rooms by code. It is constructed once in main and handed
// to both the HTTP layer and the hub; unlike the registry's single-threaded
// ancestry, Go serves those concurrently, so all access goes through a mutex.
//
// Absence is the zero state: operations on an unknown code are silent no-ops
// and never create a room. Only CreateOrGet brings a room into existence.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

// CreateOrGet ensures a room exists for code, starting at zero members with
// empty history if it was unseen.
func (r *Registry) CreateOrGet(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[code]; !ok {
		r.rooms[code] = &room{}
	}
}

// Join increments the member count. Joining a room that was never created,
// or already torn down, is rejected silently.
func (r *Registry) Join(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.rooms[code]; ok {
		rm.members++
	}
}

// Leave decrements the member count. When the count drops to zero or below
// the room is removed entirely and its message history discarded.
func (r *Registry) Leave(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[code]
	if !ok {
		return
	}
	rm.members--
	if rm.members <= 0 {
		delete(r.rooms, code)
	}
}

// RecordMessage appends a user-sent message to the room's history. Lifecycle
// notices (joins and leaves) are broadcast by the hub but never recorded.
// No-op if the room does not exist.
func (r *Registry) RecordMessage(code, sender, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rm, ok := r.rooms[code]; ok {
		rm.messages = append(rm.messages, ChatMessage{Sender: sender, Body: body})
	}
}

// Exists reports whether a room is currently registered.
func (r *Registry) Exists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.rooms[code]
	return ok
}

// Members returns the live member count, or 0 if the room does not exist.
func (r *Registry) Members(code string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rm, ok := r.rooms[code]; ok {
		return rm.members
	}
	return 0
}

// History returns a copy of the room's message sequence in insertion order.
// Nil if the room does not exist.
func (r *Registry) History(code string) []ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rm, ok := r.rooms[code]
	if !ok {
		return nil
	}
	out := make([]ChatMessage, len(rm.messages))
	copy(out, rm.messages)
	return out
}
