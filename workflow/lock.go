package workflow

import (
	"sync"

	"github.com/gofrs/uuid"
)

// inFlight tracks records with a transition currently being applied
type inFlight struct {
	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

func newInFlight() *inFlight {
	return &inFlight{ids: map[uuid.UUID]struct{}{}}
}

// acquire marks id as busy. It returns false if it already was.
func (f *inFlight) acquire(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.ids[id]; busy {
		return false
	}
	f.ids[id] = struct{}{}
	return true
}

func (f *inFlight) release(id uuid.UUID) {
	f.mu.Lock()
	delete(f.ids, id)
	f.mu.Unlock()
}
