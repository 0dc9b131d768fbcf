package models

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

// Repository stores claims. Update must fail with an ErrorVersionConflict AppError if the stored version
// differs from the version of the given claim, and increments the version on success.
type Repository interface {
	Create(ctx context.Context, c *Claim) error
	Find(ctx context.Context, id uuid.UUID) (Claim, error)
	Update(ctx context.Context, c *Claim) error
	All(ctx context.Context) (Claims, error)
}

// MemoryStore is a Repository held in memory. Claims are copied in and out, so callers never share state.
type MemoryStore struct {
	mu     sync.RWMutex
	claims map[uuid.UUID]Claim
	order  []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{claims: map[uuid.UUID]Claim{}}
}

func (m *MemoryStore) Create(ctx context.Context, c *Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = domain.GetUUID()
	}
	if _, exists := m.claims[c.ID]; exists {
		err := fmt.Errorf("claim %s already exists", c.ID)
		return api.NewAppError(err, api.ErrorUniqueKeyViolation, api.CategoryUser)
	}
	c.Version = 1
	m.claims[c.ID] = c.Copy()
	m.order = append(m.order, c.ID)
	return nil
}

func (m *MemoryStore) Find(ctx context.Context, id uuid.UUID) (Claim, error) {
	if err := ctx.Err(); err != nil {
		return Claim{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.claims[id]
	if !ok {
		return Claim{}, notFound(id)
	}
	return c.Copy(), nil
}

func (m *MemoryStore) Update(ctx context.Context, c *Claim) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.claims[c.ID]
	if !ok {
		return notFound(c.ID)
	}
	if stored.Version != c.Version {
		return versionConflict(c.ID, c.Version)
	}
	c.Version++
	m.claims[c.ID] = c.Copy()
	return nil
}

// All returns every claim in the order they were created
func (m *MemoryStore) All(ctx context.Context) (Claims, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(Claims, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.claims[id].Copy())
	}
	return out, nil
}

// Load replaces the contents of the store. Versions below 1 are set to 1.
func (m *MemoryStore) Load(claims Claims) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.claims = map[uuid.UUID]Claim{}
	m.order = nil
	for _, c := range claims {
		if c.Version < 1 {
			c.Version = 1
		}
		if _, exists := m.claims[c.ID]; !exists {
			m.order = append(m.order, c.ID)
		}
		m.claims[c.ID] = c.Copy()
	}
}
