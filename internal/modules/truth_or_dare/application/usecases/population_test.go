package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

type populationFixture struct {
	service *PopulationService
	source  *mockTriviaSource
	seen    *mockSeenStore
	sugg    *suggestionFixture
}

func newPopulationFixture() *populationFixture {
	f := &populationFixture{
		source: &mockTriviaSource{},
		seen:   newMockSeenStore(),
		sugg:   newSuggestionFixture(),
	}
	f.service = NewPopulationService(f.source, f.seen, f.sugg.service, f.sugg.prompts, discardLogger())
	return f
}

func TestPopulationService_SuggestMode(t *testing.T) {
	f := newPopulationFixture()

	output, err := f.service.Populate(context.Background(), PopulateInput{
		PerKind:     3,
		Concurrency: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.Fetched != 9 || output.Added != 9 || output.Skipped != 0 {
		t.Errorf("unexpected output: %+v", output)
	}
	if len(f.sugg.moderation.posted) != 9 {
		t.Errorf("expected 9 review cards, got %d", len(f.sugg.moderation.posted))
	}
	if len(f.sugg.prompts.snapshot()) != 0 {
		t.Error("suggest mode must not publish prompts")
	}
}

func TestPopulationService_DirectMode(t *testing.T) {
	f := newPopulationFixture()

	output, err := f.service.Populate(context.Background(), PopulateInput{
		Kinds:   []domain.Kind{domain.KindDare},
		Rating:  domain.RatingR,
		PerKind: 2,
		Direct:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.Added != 2 {
		t.Errorf("expected 2 added, got %+v", output)
	}
	for _, p := range f.sugg.prompts.snapshot() {
		if !p.Matches(domain.KindDare, domain.RatingR) || p.Source != domain.PromptSourcePopulation {
			t.Errorf("unexpected prompt: %+v", p)
		}
	}
	if len(f.sugg.moderation.posted) != 0 {
		t.Error("direct mode must not post review cards")
	}
}

func TestPopulationService_SkipsSeenSourceIDs(t *testing.T) {
	f := newPopulationFixture()
	f.source.ids = []string{"same-id"}

	output, err := f.service.Populate(context.Background(), PopulateInput{
		Kinds:   []domain.Kind{domain.KindTruth},
		PerKind: 5,
		Direct:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if output.Added != 1 || output.Skipped != 4 {
		t.Errorf("expected 1 added and 4 skipped, got %+v", output)
	}
}

func TestPopulationService_FailedPostIsRetried(t *testing.T) {
	f := newPopulationFixture()
	f.source.ids = []string{"q-1"}
	f.sugg.moderation.err = errors.New("discord down")
	input := PopulateInput{Kinds: []domain.Kind{domain.KindTruth}, PerKind: 1}

	output, err := f.service.Populate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Failed != 1 || output.Added != 0 {
		t.Fatalf("expected the post to fail, got %+v", output)
	}
	if seen, _ := f.seen.Seen(context.Background(), "q-1"); seen {
		t.Fatal("a failed post must not be recorded as seen")
	}

	f.sugg.moderation.err = nil
	output, err = f.service.Populate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Added != 1 || output.Skipped != 0 {
		t.Errorf("expected the retry to add the prompt, got %+v", output)
	}
	if len(f.sugg.moderation.posted) != 1 {
		t.Errorf("expected 1 review card, got %d", len(f.sugg.moderation.posted))
	}
	if seen, _ := f.seen.Seen(context.Background(), "q-1"); !seen {
		t.Error("a posted prompt must be recorded as seen")
	}
}

func TestPopulationService_SeenAcrossRuns(t *testing.T) {
	f := newPopulationFixture()
	f.source.ids = []string{"q-1"}
	input := PopulateInput{Kinds: []domain.Kind{domain.KindDare}, PerKind: 1, Direct: true}

	if _, err := f.service.Populate(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	output, err := f.service.Populate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Skipped != 1 || output.Added != 0 {
		t.Errorf("expected the second run to skip, got %+v", output)
	}
	if got := len(f.sugg.prompts.snapshot()); got != 1 {
		t.Errorf("expected 1 prompt, got %d", got)
	}
}

func TestPopulationService_ConcurrentDuplicatesPostOnce(t *testing.T) {
	f := newPopulationFixture()
	f.source.ids = []string{"q-1"}

	output, err := f.service.Populate(context.Background(), PopulateInput{
		Kinds:       []domain.Kind{domain.KindTruth},
		PerKind:     6,
		Concurrency: 6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Added != 1 || output.Skipped != 5 {
		t.Errorf("expected 1 added and 5 skipped, got %+v", output)
	}
	if len(f.sugg.moderation.posted) != 1 {
		t.Errorf("expected 1 review card, got %d", len(f.sugg.moderation.posted))
	}
}

func TestPopulationService_UpstreamFailuresAreCounted(t *testing.T) {
	f := newPopulationFixture()
	f.source.err = errors.New("catalog down")

	output, err := f.service.Populate(context.Background(), PopulateInput{
		Kinds:   []domain.Kind{domain.KindTruth},
		PerKind: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Failed != 3 || output.Added != 0 {
		t.Errorf("unexpected output: %+v", output)
	}
}

func TestPopulationService_Cancelled(t *testing.T) {
	f := newPopulationFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Populate(ctx, PopulateInput{PerKind: 3, Delay: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPopulationService_InvalidCount(t *testing.T) {
	f := newPopulationFixture()

	_, err := f.service.Populate(context.Background(), PopulateInput{PerKind: 0})
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}
