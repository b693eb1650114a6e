package delivery

import "sync"

// Registry tracks which public keys currently hold a live connection.
// Connections register on open and must deregister on the same code path
// that exits the loop, however it exits.
type Registry struct {
	mu    sync.Mutex
	conns map[string]Sink
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Sink)}
}

// Register records the connection for publicKey. A reconnect replaces the
// previous handle.
func (r *Registry) Register(publicKey string, sink Sink) {
	r.mu.Lock()
	r.conns[publicKey] = sink
	r.mu.Unlock()
}

// Deregister removes the entry only if it still belongs to sink. After a
// reconnect the key holds the new connection, and the old connection's
// deferred cleanup must not evict it.
func (r *Registry) Deregister(publicKey string, sink Sink) {
	r.mu.Lock()
	if r.conns[publicKey] == sink {
		delete(r.conns, publicKey)
	}
	r.mu.Unlock()
}

// Connected reports whether publicKey has a live connection. Used for
// diagnostics on the admin device listing.
func (r *Registry) Connected(publicKey string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conns[publicKey]
	return ok
}
