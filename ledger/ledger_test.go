package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sow2grow/farm-mall-api/models"
)

// fakeStore is an in-memory Store. beforeCommit, when set, runs just
// before CommitAllocation applies, which lets tests interleave a racing
// claim between the availability check and the commit.
type fakeStore struct {
	orchards     map[primitive.ObjectID]*models.Orchard
	pockets      map[primitive.ObjectID][]models.Pocket
	beforeCommit func(s *fakeStore)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orchards: make(map[primitive.ObjectID]*models.Orchard),
		pockets:  make(map[primitive.ObjectID][]models.Pocket),
	}
}

func (s *fakeStore) addOrchard(o *models.Orchard) primitive.ObjectID {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	s.orchards[o.ID] = o
	return o.ID
}

func (s *fakeStore) Orchard(_ context.Context, id primitive.ObjectID) (*models.Orchard, error) {
	o, ok := s.orchards[id]
	if !ok {
		return nil, ErrOrchardNotFound
	}
	copied := *o
	return &copied, nil
}

func (s *fakeStore) ClaimedNumbers(_ context.Context, orchardID primitive.ObjectID) ([]int, error) {
	var nums []int
	for _, p := range s.pockets[orchardID] {
		nums = append(nums, p.PocketNumber)
	}
	return nums, nil
}

func (s *fakeStore) CommitAllocation(_ context.Context, alloc Allocation) error {
	if s.beforeCommit != nil {
		cb := s.beforeCommit
		s.beforeCommit = nil
		cb(s)
	}
	claimed := make(map[int]struct{})
	for _, p := range s.pockets[alloc.OrchardID] {
		claimed[p.PocketNumber] = struct{}{}
	}
	for _, p := range alloc.Pockets {
		if _, taken := claimed[p.PocketNumber]; taken {
			return ErrDuplicatePocket
		}
	}
	s.pockets[alloc.OrchardID] = append(s.pockets[alloc.OrchardID], alloc.Pockets...)
	o := s.orchards[alloc.OrchardID]
	o.FilledPockets += len(alloc.Pockets)
	o.Supporters++
	o.CompletionRate = alloc.CompletionRate
	return nil
}

func (s *fakeStore) MarkCompleted(_ context.Context, orchardID primitive.ObjectID) error {
	o, ok := s.orchards[orchardID]
	if !ok {
		return ErrOrchardNotFound
	}
	if o.PayoutProcessed {
		return ErrPayoutProcessed
	}
	o.Status = models.OrchardCompleted
	o.PayoutProcessed = true
	return nil
}

func (s *fakeStore) CountView(_ context.Context, orchardID primitive.ObjectID) error {
	o, ok := s.orchards[orchardID]
	if !ok {
		return ErrOrchardNotFound
	}
	o.Views++
	return nil
}

func activeOrchard(totalPockets int, price float64) *models.Orchard {
	return &models.Orchard{
		Title:        "Community Greenhouse",
		Status:       models.OrchardActive,
		SeedValue:    float64(totalPockets) * price,
		PocketPrice:  price,
		TotalPockets: totalPockets,
	}
}

var ruth = Bestower{ID: primitive.NewObjectID(), FirstName: "Ruth", LastName: "Boaz"}

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var lerr *Error
	require.True(t, errors.As(err, &lerr), "expected ledger.Error, got %v", err)
	return lerr.Kind
}

func TestAllocateFillsPockets(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(100, 150))
	l := New(st)

	res, err := l.Allocate(context.Background(), id, []int{1, 2, 3}, ruth)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Allocated)
	assert.InDelta(t, 450.0, res.GrossTotal, 1e-9)
	assert.InDelta(t, 3.0, res.CompletionRate, 1e-9)

	o := st.orchards[id]
	assert.Equal(t, 3, o.FilledPockets)
	assert.Equal(t, 1, o.Supporters, "one increment per allocation call")
	for _, p := range st.pockets[id] {
		assert.InDelta(t, 150.0, p.Amount, 1e-9)
		assert.Equal(t, "Ruth B.", p.BestowerName)
		assert.Equal(t, models.StageSprout, p.GrowthStage)
	}
}

func TestAllocateBatchIsAllOrNothing(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(100, 150))
	l := New(st)

	_, err := l.Allocate(context.Background(), id, []int{1, 2, 3}, ruth)
	require.NoError(t, err)

	// 4 is free but the batch overlaps on 2 and 3, so nothing is written
	_, err = l.Allocate(context.Background(), id, []int{2, 3, 4}, ruth)
	require.Error(t, err)
	assert.Equal(t, KindConflict, kindOf(t, err))

	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, []int{2, 3}, lerr.Taken)

	assert.Equal(t, 3, st.orchards[id].FilledPockets)
	assert.Len(t, st.pockets[id], 3)
}

func TestAllocateOutOfRange(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(100, 150))
	l := New(st)

	for _, n := range []int{0, 101, -5} {
		_, err := l.Allocate(context.Background(), id, []int{n}, ruth)
		require.Error(t, err, "pocket %d", n)
		assert.Equal(t, KindInvalidInput, kindOf(t, err))
	}
	assert.Empty(t, st.pockets[id])
}

func TestAllocateEmptyAndDuplicateRequests(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(100, 150))
	l := New(st)

	_, err := l.Allocate(context.Background(), id, nil, ruth)
	assert.Equal(t, KindInvalidInput, kindOf(t, err))

	_, err = l.Allocate(context.Background(), id, []int{5, 5}, ruth)
	assert.Equal(t, KindInvalidInput, kindOf(t, err))
}

func TestAllocateUnknownOrchard(t *testing.T) {
	l := New(newFakeStore())
	_, err := l.Allocate(context.Background(), primitive.NewObjectID(), []int{1}, ruth)
	assert.Equal(t, KindNotFound, kindOf(t, err))
}

func TestAllocateRejectsInactiveOrchard(t *testing.T) {
	for _, status := range []models.OrchardStatus{
		models.OrchardPaused, models.OrchardCancelled, models.OrchardCompleted,
	} {
		st := newFakeStore()
		o := activeOrchard(10, 150)
		o.Status = status
		id := st.addOrchard(o)

		_, err := New(st).Allocate(context.Background(), id, []int{1}, ruth)
		require.Error(t, err, "status %s", status)
		assert.Equal(t, KindInvalidState, kindOf(t, err))
	}
}

func TestAllocateRacingClaimLosesWithConflict(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(10, 150))
	l := New(st)

	rival := Bestower{ID: primitive.NewObjectID(), FirstName: "Jonah", LastName: "Amittai"}
	st.beforeCommit = func(s *fakeStore) {
		// rival claims pocket 2 after our availability check passed
		_, err := New(s).Allocate(context.Background(), id, []int{2}, rival)
		require.NoError(t, err)
	}

	_, err := l.Allocate(context.Background(), id, []int{1, 2}, ruth)
	require.Error(t, err)
	assert.Equal(t, KindConflict, kindOf(t, err))

	var lerr *Error
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, []int{2}, lerr.Taken)

	// exactly one claim on pocket 2 exists
	count := 0
	for _, p := range st.pockets[id] {
		if p.PocketNumber == 2 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestFilledPocketsMonotonic(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(10, 150))
	l := New(st)

	prev := 0
	batches := [][]int{{1}, {2, 3}, {3, 4}, {5, 6, 7}, {7}, {8, 9, 10}}
	for _, batch := range batches {
		l.Allocate(context.Background(), id, batch, ruth)
		filled := st.orchards[id].FilledPockets
		assert.GreaterOrEqual(t, filled, prev)
		assert.LessOrEqual(t, filled, st.orchards[id].TotalPockets)
		prev = filled
	}
	// overlapping batches {3,4} and {7} were rejected whole
	assert.Equal(t, 9, st.orchards[id].FilledPockets)
}

func TestCompleteIsOneShot(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(3, 150))
	l := New(st)

	_, err := l.Allocate(context.Background(), id, []int{1, 2, 3}, ruth)
	require.NoError(t, err)

	orchard, err := l.Complete(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.OrchardCompleted, orchard.Status)
	assert.True(t, orchard.PayoutProcessed)

	_, err = l.Complete(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, kindOf(t, err))
}

func TestCompleteRequiresFullFunding(t *testing.T) {
	st := newFakeStore()
	id := st.addOrchard(activeOrchard(3, 150))
	l := New(st)

	_, err := l.Allocate(context.Background(), id, []int{1}, ruth)
	require.NoError(t, err)

	_, err = l.Complete(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, KindInvalidState, kindOf(t, err))
}

func TestViewRecomputesRateAndCounts(t *testing.T) {
	st := newFakeStore()
	o := activeOrchard(100, 150)
	o.FilledPockets = 25
	o.CompletionRate = 99.9 // stale stored value must be ignored
	id := st.addOrchard(o)
	l := New(st)

	viewed, err := l.View(context.Background(), id)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, viewed.CompletionRate, 1e-9)
	assert.Equal(t, 1, viewed.Views)

	viewed, err = l.View(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.Views, "every view counts")
}

func TestViewZeroPocketOrchard(t *testing.T) {
	st := newFakeStore()
	o := activeOrchard(0, 150)
	id := st.addOrchard(o)
	l := New(st)

	viewed, err := l.View(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0.0, viewed.CompletionRate)
}

func TestBestowerDisplayName(t *testing.T) {
	assert.Equal(t, "Ruth B.", Bestower{FirstName: "Ruth", LastName: "Boaz"}.DisplayName())
	assert.Equal(t, "Ruth", Bestower{FirstName: "Ruth"}.DisplayName())
	assert.Equal(t, "Åsa Ö.", Bestower{FirstName: "Åsa", LastName: "Öberg"}.DisplayName())
}
