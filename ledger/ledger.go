// Package ledger owns the funding state of orchards and arbitrates
// pocket claims. All storage access goes through the Store interface so
// the document store is an injected collaborator, not a global handle.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	models "github.com/sow2grow/farm-mall-api/models"
)

// Sentinel errors a Store implementation reports back to the ledger.
var (
	// ErrOrchardNotFound means the orchard document does not exist.
	ErrOrchardNotFound = errors.New("orchard not found")
	// ErrDuplicatePocket means a pocket insert hit the unique
	// (orchard_id, pocket_number) index, i.e. a concurrent claim won.
	ErrDuplicatePocket = errors.New("duplicate pocket number")
	// ErrPayoutProcessed means the completion flip found the payout
	// already recorded, i.e. a concurrent complete won.
	ErrPayoutProcessed = errors.New("payout already processed")
)

// Store is the persistence surface the ledger needs. CommitAllocation
// must be atomic: either every pocket is inserted and the orchard
// counters updated, or nothing is written at all.
type Store interface {
	Orchard(ctx context.Context, id primitive.ObjectID) (*models.Orchard, error)
	ClaimedNumbers(ctx context.Context, orchardID primitive.ObjectID) ([]int, error)
	CommitAllocation(ctx context.Context, alloc Allocation) error
	MarkCompleted(ctx context.Context, orchardID primitive.ObjectID) error
	CountView(ctx context.Context, orchardID primitive.ObjectID) error
}

// Bestower identifies the authenticated caller claiming pockets.
type Bestower struct {
	ID        primitive.ObjectID
	FirstName string
	LastName  string
}

// DisplayName renders the denormalized pocket label, first name plus
// last initial: "Ruth B."
func (b Bestower) DisplayName() string {
	if b.LastName == "" {
		return b.FirstName
	}
	return fmt.Sprintf("%s %s.", b.FirstName, string([]rune(b.LastName)[0]))
}

// Allocation is one committed batch of pocket claims.
type Allocation struct {
	OrchardID      primitive.ObjectID
	Pockets        []models.Pocket
	CompletionRate float64
}

// AllocationResult reports a successful claim back to the caller.
type AllocationResult struct {
	PocketNumbers  []int   `json:"pocket_numbers"`
	Allocated      int     `json:"pockets_selected"`
	GrossTotal     float64 `json:"gross_total"`
	CompletionRate float64 `json:"completion_rate"`
}

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Allocate claims the requested pocket numbers for the bestower. The
// batch is all-or-nothing: if any requested number is already taken the
// whole request fails with a Conflict naming the taken numbers, and
// nothing is written.
func (l *Ledger) Allocate(ctx context.Context, orchardID primitive.ObjectID, numbers []int, bestower Bestower) (*AllocationResult, error) {
	if len(numbers) == 0 {
		return nil, invalidInput("no pocket numbers requested")
	}
	seen := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		if _, dup := seen[n]; dup {
			return nil, invalidInput("pocket number %d requested more than once", n)
		}
		seen[n] = struct{}{}
	}

	orchard, err := l.store.Orchard(ctx, orchardID)
	if err != nil {
		if errors.Is(err, ErrOrchardNotFound) {
			return nil, notFound("orchard not found")
		}
		return nil, internal("could not load orchard", err)
	}
	if orchard.Status != models.OrchardActive {
		return nil, invalidState("orchard is not active")
	}
	for _, n := range numbers {
		if n < 1 || n > orchard.TotalPockets {
			return nil, invalidInput("pocket number %d out of range 1..%d", n, orchard.TotalPockets)
		}
	}

	claimed, err := l.store.ClaimedNumbers(ctx, orchardID)
	if err != nil {
		return nil, internal("could not load claimed pockets", err)
	}
	if taken := intersect(numbers, claimed); len(taken) > 0 {
		return nil, conflict(taken)
	}

	now := time.Now()
	pockets := make([]models.Pocket, 0, len(numbers))
	for _, n := range numbers {
		pockets = append(pockets, models.Pocket{
			ID:           primitive.NewObjectID(),
			OrchardID:    orchardID,
			PocketNumber: n,
			UserID:       bestower.ID,
			Amount:       orchard.PocketPrice,
			GrowthStage:  models.StageSprout,
			BestowerName: bestower.DisplayName(),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	newFilled := orchard.FilledPockets + len(numbers)
	rate := float64(newFilled) / float64(orchard.TotalPockets) * 100

	err = l.store.CommitAllocation(ctx, Allocation{
		OrchardID:      orchardID,
		Pockets:        pockets,
		CompletionRate: rate,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicatePocket) {
			// A concurrent claim won between our availability check and
			// the commit; the transaction rolled back. Re-read so the
			// caller sees the numbers that are actually taken now.
			claimed, rerr := l.store.ClaimedNumbers(ctx, orchardID)
			if rerr == nil {
				if taken := intersect(numbers, claimed); len(taken) > 0 {
					return nil, conflict(taken)
				}
			}
			return nil, conflict(nil)
		}
		return nil, internal("could not commit allocation", err)
	}

	return &AllocationResult{
		PocketNumbers:  append([]int(nil), numbers...),
		Allocated:      len(numbers),
		GrossTotal:     float64(len(numbers)) * orchard.PocketPrice,
		CompletionRate: rate,
	}, nil
}

// Complete marks a fully funded orchard as completed and flips the
// payout flag. One-way and one-time: a second call fails.
func (l *Ledger) Complete(ctx context.Context, orchardID primitive.ObjectID) (*models.Orchard, error) {
	orchard, err := l.store.Orchard(ctx, orchardID)
	if err != nil {
		if errors.Is(err, ErrOrchardNotFound) {
			return nil, notFound("orchard not found")
		}
		return nil, internal("could not load orchard", err)
	}
	if orchard.PayoutProcessed {
		return nil, invalidState("payout already processed")
	}
	if orchard.FilledPockets != orchard.TotalPockets {
		return nil, invalidState("orchard is not fully funded")
	}

	if err := l.store.MarkCompleted(ctx, orchardID); err != nil {
		if errors.Is(err, ErrPayoutProcessed) {
			return nil, invalidState("payout already processed")
		}
		return nil, internal("could not complete orchard", err)
	}

	orchard.Status = models.OrchardCompleted
	orchard.PayoutProcessed = true
	orchard.UpdatedAt = time.Now()
	return orchard, nil
}

// View loads an orchard with its completion rate recomputed from the
// pocket counters and bumps the view counter. Every call counts.
func (l *Ledger) View(ctx context.Context, orchardID primitive.ObjectID) (*models.Orchard, error) {
	orchard, err := l.store.Orchard(ctx, orchardID)
	if err != nil {
		if errors.Is(err, ErrOrchardNotFound) {
			return nil, notFound("orchard not found")
		}
		return nil, internal("could not load orchard", err)
	}

	if err := l.store.CountView(ctx, orchardID); err != nil {
		// Display counter only; a failed bump never fails the read.
		log.Printf("view counter increment failed for orchard %s: %v", orchardID.Hex(), err)
	} else {
		orchard.Views++
	}

	orchard.CompletionRate = orchard.ComputeCompletionRate()
	return orchard, nil
}

// intersect returns the sorted overlap between the requested and the
// already-claimed numbers.
func intersect(requested, claimed []int) []int {
	taken := make(map[int]struct{}, len(claimed))
	for _, n := range claimed {
		taken[n] = struct{}{}
	}
	var out []int
	for _, n := range requested {
		if _, ok := taken[n]; ok {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}
