package reminder

import "sync"

// Registry lazily creates one running engine per user and tears all of
// them down on shutdown. The factory is expected to return a started
// engine wired to that user's snapshot and change feed.
type Registry struct {
	mu      sync.Mutex
	engines map[string]*Engine
	factory func(userID string) *Engine
}

func NewRegistry(factory func(userID string) *Engine) *Registry {
	return &Registry{
		engines: make(map[string]*Engine),
		factory: factory,
	}
}

func (r *Registry) Get(userID string) *Engine {
	r.mu.Lock()
	defer r.mu.Unlock()

	if eng, ok := r.engines[userID]; ok {
		return eng
	}
	eng := r.factory(userID)
	r.engines[userID] = eng
	return eng
}

func (r *Registry) Shutdown() {
	r.mu.Lock()
	engines := make([]*Engine, 0, len(r.engines))
	for _, eng := range r.engines {
		engines = append(engines, eng)
	}
	r.engines = make(map[string]*Engine)
	r.mu.Unlock()

	for _, eng := range engines {
		eng.Stop()
	}
}
