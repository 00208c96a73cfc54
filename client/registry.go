package client

import (
	"sync"
	"time"
)

// defaults of NewRegistry
const (
	DefaultMaxEntries = 5000
	DefaultMaxAge     = 15 * time.Minute
)

// Request is the last tip a client looked at
type Request struct {
	Client   string    `json:"client"`
	TipID    string    `json:"tipID"`
	Accessed time.Time `json:"accessed"`
}

// Registry remembers the last tip per client (IP) so page refreshes are not counted as
// views. The map is maintained by request handlers and a flush ticker at the same time.
type Registry struct {
	mu       sync.RWMutex
	requests map[string]Request

	// Flush only starts to drop entries above MaxEntries
	MaxEntries int
	MaxAge     time.Duration
	Now        func() time.Time
}

// NewRegistry returns an empty registry with the default limits
func NewRegistry() *Registry {
	return &Registry{
		requests:   make(map[string]Request),
		MaxEntries: DefaultMaxEntries,
		MaxAge:     DefaultMaxAge,
		Now:        time.Now,
	}
}

// Continue records the request and reports whether it is a new view
// (false if the client's last request was for the same tip)
func (r *Registry) Continue(client string, tipID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, found := r.requests[client]
	r.requests[client] = Request{
		Client:   client,
		TipID:    tipID,
		Accessed: r.Now(),
	}

	return !found || last.TipID != tipID
}

// Flush removes requests older than MaxAge once the registry holds more than MaxEntries,
// usually called by a go-routine that runs in a ticker. Returns the number of removed entries.
func (r *Registry) Flush() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.requests) <= r.MaxEntries {
		return 0
	}

	removed := 0
	now := r.Now()
	// it's safe to delete while ranging over a map
	for key, value := range r.requests {
		if now.Sub(value.Accessed) > r.MaxAge {
			delete(r.requests, key)
			removed++
		}
	}
	return removed
}

// Count returns how many different clients are currently active
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.requests)
}

// Dump returns up to max requests (in no particular order)
func (r *Registry) Dump(max int) []Request {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]Request, 0, max)
	for _, v := range r.requests {
		if len(res) >= max {
			break
		}
		res = append(res, v)
	}
	return res
}
