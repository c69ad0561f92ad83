package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// ErrDuplicatePrompt is returned when appending a prompt whose ID is already stored.
var ErrDuplicatePrompt = errors.New("prompt already exists")

// promptsKey is the guard key shared by every write to a prompt store.
const promptsKey = "prompts"

type poolKey struct {
	kind   domain.Kind
	rating domain.Rating
}

func newPoolKey(kind domain.Kind, rating domain.Rating) poolKey {
	return poolKey{kind: kind.Normalize(), rating: rating.Normalize()}
}

// promptSnapshot is an immutable view of the pool. Writers replace it wholesale.
type promptSnapshot struct {
	all   []domain.Prompt
	pools map[poolKey][]domain.Prompt
	ids   map[domain.PromptID]struct{}
}

// MemoryPromptRepository is an in-memory implementation of PromptRepository.
// Reads work on the current snapshot without locking.
type MemoryPromptRepository struct {
	guard    ports.ExclusiveAccess
	snapshot atomic.Pointer[promptSnapshot]
}

// NewMemoryPromptRepository creates a new MemoryPromptRepository.
func NewMemoryPromptRepository(guard ports.ExclusiveAccess) *MemoryPromptRepository {
	r := &MemoryPromptRepository{guard: guard}
	r.snapshot.Store(&promptSnapshot{
		pools: make(map[poolKey][]domain.Prompt),
		ids:   make(map[domain.PromptID]struct{}),
	})
	return r
}

// Append adds a prompt. Appending an ID that is already present is an error.
func (r *MemoryPromptRepository) Append(ctx context.Context, prompt domain.Prompt) error {
	prompt = prompt.Normalize()
	if err := prompt.Validate(); err != nil {
		return err
	}

	return r.guard.WithExclusiveAccess(ctx, promptsKey, func(context.Context) error {
		current := r.snapshot.Load()
		if _, dup := current.ids[prompt.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePrompt, prompt.ID)
		}

		key := newPoolKey(prompt.Kind, prompt.Rating)
		next := &promptSnapshot{
			all:   append(slices.Clip(current.all), prompt),
			pools: maps.Clone(current.pools),
			ids:   maps.Clone(current.ids),
		}
		next.pools[key] = append(slices.Clip(current.pools[key]), prompt)
		next.ids[prompt.ID] = struct{}{}

		r.snapshot.Store(next)
		return nil
	})
}

// Sample returns a random prompt of the given kind and rating.
func (r *MemoryPromptRepository) Sample(
	_ context.Context,
	kind domain.Kind,
	rating domain.Rating,
) (domain.Prompt, error) {
	pool := r.snapshot.Load().pools[newPoolKey(kind, rating)]
	if len(pool) == 0 {
		return domain.Prompt{}, domain.ErrNoPrompt
	}
	return pool[rand.IntN(len(pool))], nil
}

// Count returns the number of prompts of the given kind and rating.
func (r *MemoryPromptRepository) Count(
	_ context.Context,
	kind domain.Kind,
	rating domain.Rating,
) (int, error) {
	return len(r.snapshot.Load().pools[newPoolKey(kind, rating)]), nil
}

// All returns every prompt in insertion order.
func (r *MemoryPromptRepository) All(_ context.Context) ([]domain.Prompt, error) {
	return slices.Clone(r.snapshot.Load().all), nil
}

// Ping always succeeds.
func (r *MemoryPromptRepository) Ping(_ context.Context) error {
	return nil
}

// MemorySeenStore is an in-memory implementation of SeenStore.
type MemorySeenStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemorySeenStore creates a new MemorySeenStore.
func NewMemorySeenStore() *MemorySeenStore {
	return &MemorySeenStore{seen: make(map[string]struct{})}
}

// Seen reports whether sourceID was recorded.
func (s *MemorySeenStore) Seen(_ context.Context, sourceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.seen[sourceID]
	return ok, nil
}

// MarkSeen records sourceID and reports whether it was new.
func (s *MemorySeenStore) MarkSeen(_ context.Context, sourceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[sourceID]; ok {
		return false, nil
	}
	s.seen[sourceID] = struct{}{}
	return true, nil
}

// Compile-time checks.
var (
	_ domain.PromptRepository = (*MemoryPromptRepository)(nil)
	_ ports.SeenStore         = (*MemorySeenStore)(nil)
)
