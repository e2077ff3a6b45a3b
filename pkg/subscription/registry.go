package subscription

import (
	"errors"
	"strconv"
	"sync"
)

// Registry errors.
var (
	// ErrNotFound indicates a sid this registry never issued.
	ErrNotFound = errors.New("subscription not found")

	// ErrInactive indicates a sid that has been unsubscribed.
	ErrInactive = errors.New("subscription no longer active")
)

// Msg is one dispatched message.
type Msg struct {
	// Subject is the subject the message was published to.
	Subject string

	// SID identifies the subscription that matched.
	SID string

	// Data is the payload. May be empty.
	Data []byte
}

// Handler is invoked by the dispatch loop for each matching message.
// Handlers run on the dispatch goroutine; a slow handler stalls the
// loop.
type Handler func(msg Msg)

// entry is one registered subscription.
type entry struct {
	subject string
	handler Handler
	active  bool
}

// Registry maps subscription ids to handlers for one connection.
// It is safe for concurrent use: the dispatch loop reads while
// subscribe/unsubscribe calls mutate.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	nextID  uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Register stores a handler under a freshly generated sid and returns
// the sid. Ids are unique for the registry's lifetime.
func (r *Registry) Register(subject string, h Handler) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sid := strconv.FormatUint(r.nextID, 10)
	r.entries[sid] = &entry{subject: subject, handler: h, active: true}
	r.order = append(r.order, sid)
	return sid
}

// Deactivate marks a subscription as unsubscribed and drops its
// handler. The sid stays known so late deliveries can be told apart
// from sids that were never issued.
func (r *Registry) Deactivate(sid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, exists := r.entries[sid]
	if !exists {
		return ErrNotFound
	}
	if !e.active {
		return ErrInactive
	}
	e.active = false
	e.handler = nil
	return nil
}

// Lookup returns the handler for sid. ErrInactive means the sid was
// valid but has been unsubscribed; ErrNotFound means this registry
// never issued it.
func (r *Registry) Lookup(sid string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[sid]
	if !exists {
		return nil, ErrNotFound
	}
	if !e.active {
		return nil, ErrInactive
	}
	return e.handler, nil
}

// Subject returns the subject a sid was registered for, active or not.
func (r *Registry) Subject(sid string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[sid]
	if !exists {
		return "", ErrNotFound
	}
	return e.subject, nil
}

// Count returns the number of active subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.entries {
		if e.active {
			n++
		}
	}
	return n
}

// IDs returns the active sids in insertion order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.order))
	for _, sid := range r.order {
		if r.entries[sid].active {
			ids = append(ids, sid)
		}
	}
	return ids
}

// Each calls fn for every active subscription in insertion order.
// Used to replay SUB commands after a reconnect.
func (r *Registry) Each(fn func(sid, subject string)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sid := range r.order {
		if e := r.entries[sid]; e.active {
			fn(sid, e.subject)
		}
	}
}
