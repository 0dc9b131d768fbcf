package models

import (
	"context"
	"sync"

	"github.com/gobuffalo/nulls"

	"github.com/silinternational/claimflow/api"
	"github.com/silinternational/claimflow/domain"
)

func (ms *ModelSuite) TestMemoryStore() {
	ctx := context.Background()
	store := NewMemoryStore()

	c := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "Ann", 100, testNow)
	c.Version = 0
	ms.NoError(store.Create(ctx, &c))
	ms.Equal(1, c.Version)

	err := store.Create(ctx, &c)
	ms.EqualAppError(api.AppError{Key: api.ErrorUniqueKeyViolation, Category: api.CategoryUser}, err)

	found, err := store.Find(ctx, c.ID)
	ms.NoError(err)
	ms.Equal(c, found)

	// changes to a found copy are not visible until Update
	found.ClientName = "changed"
	again, err := store.Find(ctx, c.ID)
	ms.NoError(err)
	ms.Equal("Ann", again.ClientName)

	ms.NoError(store.Update(ctx, &found))
	ms.Equal(2, found.Version)

	// a stale copy is rejected
	again.Description = nulls.NewString("stale")
	err = store.Update(ctx, &again)
	ms.EqualAppError(api.AppError{Key: api.ErrorVersionConflict, Category: api.CategoryConflict}, err)
	ms.Equal(1, again.Version)

	missing := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "Nobody", 100, testNow)
	_, err = store.Find(ctx, missing.ID)
	ms.EqualAppError(api.AppError{Key: api.ErrorResourceNotFound, Category: api.CategoryNotFound}, err)
	err = store.Update(ctx, &missing)
	ms.EqualAppError(api.AppError{Key: api.ErrorResourceNotFound, Category: api.CategoryNotFound}, err)

	second := ClaimFixture(api.ClaimKindEmergency, api.ClaimStatusPendingMedical, "Ben", 100, testNow)
	second.ID = [16]byte{}
	ms.NoError(store.Create(ctx, &second))
	ms.Equal(4, int(second.ID.Version()))

	all, err := store.All(ctx)
	ms.NoError(err)
	ms.Equal([]string{"changed", "Ben"}, names(all))
}

func (ms *ModelSuite) TestMemoryStore_Load() {
	store := NewMemoryStore()
	fixtures := CreateClaimFixtures(FixturesConfig{NumberOfClaims: 4})
	fixtures.Claims[2].Version = 0

	store.Load(fixtures.Claims)

	all, err := store.All(context.Background())
	ms.NoError(err)
	ms.Len(all, 4)
	ms.Equal(1, all[2].Version)
}

func (ms *ModelSuite) TestMemoryStore_CanceledContext() {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Find(ctx, domain.GetUUID())
	ms.ErrorIs(err, context.Canceled)
}

func (ms *ModelSuite) TestMemoryStore_ConcurrentUpdates() {
	ctx := context.Background()
	store := NewMemoryStore()
	c := ClaimFixture(api.ClaimKindHealthcare, api.ClaimStatusPendingMedical, "Ann", 100, testNow)
	ms.NoError(store.Create(ctx, &c))

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp := c.Copy()
			results <- store.Update(ctx, &cp)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	ms.Equal(1, succeeded, "only one writer of the same version may win")

	stored, err := store.Find(ctx, c.ID)
	ms.NoError(err)
	ms.Equal(2, stored.Version)
}
