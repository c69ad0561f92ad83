package usecases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/infrastructure"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedRating(r domain.Rating) RatingPicker {
	return func() domain.Rating { return r }
}

type mockPromptRepository struct {
	mu          sync.Mutex
	prompts     []domain.Prompt
	appendErr   error
	sampleErr   error
	allErr      error
	appendDelay time.Duration

	inFlight atomic.Int32
	overlaps atomic.Int32
}

func newMockPromptRepository(prompts ...domain.Prompt) *mockPromptRepository {
	return &mockPromptRepository{prompts: prompts}
}

func (m *mockPromptRepository) Append(_ context.Context, prompt domain.Prompt) error {
	if m.inFlight.Add(1) > 1 {
		m.overlaps.Add(1)
	}
	defer m.inFlight.Add(-1)

	if m.appendDelay > 0 {
		time.Sleep(m.appendDelay)
	}
	if m.appendErr != nil {
		return m.appendErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return nil
}

func (m *mockPromptRepository) Sample(
	_ context.Context,
	kind domain.Kind,
	rating domain.Rating,
) (domain.Prompt, error) {
	if m.sampleErr != nil {
		return domain.Prompt{}, m.sampleErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.prompts {
		if p.Matches(kind, rating) {
			return p, nil
		}
	}
	return domain.Prompt{}, domain.ErrNoPrompt
}

func (m *mockPromptRepository) Count(_ context.Context, kind domain.Kind, rating domain.Rating) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, p := range m.prompts {
		if p.Matches(kind, rating) {
			n++
		}
	}
	return n, nil
}

func (m *mockPromptRepository) All(_ context.Context) ([]domain.Prompt, error) {
	if m.allErr != nil {
		return nil, m.allErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Prompt(nil), m.prompts...), nil
}

func (m *mockPromptRepository) snapshot() []domain.Prompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Prompt(nil), m.prompts...)
}

type mockSuggestionCache struct {
	mu          sync.Mutex
	suggestions map[domain.Handle]domain.PendingSuggestion
	resolved    map[domain.Handle]struct{}
	putErr      error
	takeErr     error
	removeErr   error
	removed     []domain.Handle
}

func newMockSuggestionCache() *mockSuggestionCache {
	return &mockSuggestionCache{
		suggestions: make(map[domain.Handle]domain.PendingSuggestion),
		resolved:    make(map[domain.Handle]struct{}),
	}
}

func (m *mockSuggestionCache) Put(_ context.Context, s domain.PendingSuggestion) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestions[s.Handle] = s
	delete(m.resolved, s.Handle)
	return nil
}

func (m *mockSuggestionCache) Take(_ context.Context, h domain.Handle) (domain.PendingSuggestion, error) {
	if m.takeErr != nil {
		return domain.PendingSuggestion{}, m.takeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resolved[h]; ok {
		return domain.PendingSuggestion{}, domain.ErrSuggestionResolved
	}
	s, ok := m.suggestions[h]
	if !ok {
		return domain.PendingSuggestion{}, domain.ErrSuggestionNotFound
	}
	return s, nil
}

func (m *mockSuggestionCache) Remove(_ context.Context, h domain.Handle) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.suggestions, h)
	m.resolved[h] = struct{}{}
	m.removed = append(m.removed, h)
	return nil
}

func (m *mockSuggestionCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.suggestions)
}

type mockModerationChannel struct {
	mu     sync.Mutex
	posted []domain.PendingSuggestion
	err    error
}

func (m *mockModerationChannel) PostSuggestion(_ context.Context, s domain.PendingSuggestion) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, s)
	return nil
}

type mockCorrelationCache struct {
	tokens      map[string]string
	rememberErr error
	recallErr   error
	lastTTL     time.Duration
}

func newMockCorrelationCache() *mockCorrelationCache {
	return &mockCorrelationCache{tokens: make(map[string]string)}
}

func (m *mockCorrelationCache) Remember(_ context.Context, id, token string, ttl time.Duration) error {
	if m.rememberErr != nil {
		return m.rememberErr
	}
	m.tokens[id] = token
	m.lastTTL = ttl
	return nil
}

func (m *mockCorrelationCache) Recall(_ context.Context, id string) (string, bool, error) {
	if m.recallErr != nil {
		return "", false, m.recallErr
	}
	token, ok := m.tokens[id]
	delete(m.tokens, id)
	return token, ok, nil
}

type mockMessageEditor struct {
	tokens     []string
	messages   []string
	tokenErr   error
	messageErr error
}

func (m *mockMessageEditor) ClearInteractionControls(_ context.Context, token string) error {
	if m.tokenErr != nil {
		return m.tokenErr
	}
	m.tokens = append(m.tokens, token)
	return nil
}

func (m *mockMessageEditor) ClearMessageControls(_ context.Context, channelID, messageID string) error {
	if m.messageErr != nil {
		return m.messageErr
	}
	m.messages = append(m.messages, channelID+"/"+messageID)
	return nil
}

type mockTriviaSource struct {
	mu    sync.Mutex
	calls int
	err   error

	// ids cycles through these source IDs; a repeated ID simulates a duplicate.
	ids []string
}

func (m *mockTriviaSource) FetchRandom(
	_ context.Context,
	kind domain.Kind,
	rating domain.Rating,
) (*ports.SourcePrompt, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := fmt.Sprintf("%s-%d", kind, m.calls)
	if len(m.ids) > 0 {
		id = m.ids[m.calls%len(m.ids)]
	}
	m.calls++
	if rating == "" {
		rating = domain.RatingPG13
	}
	return &ports.SourcePrompt{
		SourceID: id,
		Kind:     kind,
		Rating:   rating,
		Text:     "catalog prompt " + id,
	}, nil
}

type mockSeenStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
	err  error
}

func newMockSeenStore() *mockSeenStore {
	return &mockSeenStore{seen: make(map[string]struct{})}
}

func (m *mockSeenStore) Seen(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[id]
	return ok, nil
}

func (m *mockSeenStore) MarkSeen(_ context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[id]; ok {
		return false, nil
	}
	m.seen[id] = struct{}{}
	return true, nil
}

type suggestionFixture struct {
	service    *SuggestionService
	cache      *mockSuggestionCache
	prompts    *mockPromptRepository
	moderation *mockModerationChannel
}

func newSuggestionFixture() *suggestionFixture {
	f := &suggestionFixture{
		cache:      newMockSuggestionCache(),
		prompts:    newMockPromptRepository(),
		moderation: &mockModerationChannel{},
	}
	f.service = NewSuggestionService(
		f.cache,
		f.prompts,
		f.moderation,
		infrastructure.NewGuard(),
		discardLogger(),
	)
	return f
}

func (f *suggestionFixture) seed(h domain.Handle, kind domain.Kind, text string, rating domain.Rating) domain.SuggestionRef {
	f.cache.suggestions[h] = domain.PendingSuggestion{Handle: h, Kind: kind, Text: text, Rating: rating}
	return domain.SuggestionRef{Handle: h, Kind: kind, Rating: rating}
}

// Compile-time interface checks.
var (
	_ domain.PromptRepository = (*mockPromptRepository)(nil)
	_ domain.SuggestionCache  = (*mockSuggestionCache)(nil)
	_ domain.CorrelationCache = (*mockCorrelationCache)(nil)
	_ ports.ModerationChannel = (*mockModerationChannel)(nil)
	_ ports.MessageEditor     = (*mockMessageEditor)(nil)
	_ ports.TriviaSource      = (*mockTriviaSource)(nil)
	_ ports.SeenStore         = (*mockSeenStore)(nil)
)
