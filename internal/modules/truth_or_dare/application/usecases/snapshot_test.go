package usecases

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/infrastructure"
)

func TestSnapshotService_ExportImportMerges(t *testing.T) {
	ctx := context.Background()
	shared := domain.NewPrompt(domain.KindTruth, domain.RatingPG, "shared", domain.PromptSourceSuggestion)
	onlySource := domain.NewPrompt(domain.KindDare, domain.RatingR, "only in source", domain.PromptSourceEdited)
	onlyTarget := domain.NewPrompt(domain.KindWouldYouRather, domain.RatingPG13, "only in target", domain.PromptSourcePopulation)

	source := NewSnapshotService(newMockPromptRepository(shared, onlySource), discardLogger())
	targetRepo := newMockPromptRepository(shared, onlyTarget)
	target := NewSnapshotService(targetRepo, discardLogger())

	var buf bytes.Buffer
	n, err := source.Export(ctx, &buf)
	if err != nil {
		t.Fatalf("unexpected export error: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 exported prompts, got %d", n)
	}

	exported := buf.String()
	output, err := target.Import(ctx, strings.NewReader(exported))
	if err != nil {
		t.Fatalf("unexpected import error: %v", err)
	}
	if output.Added != 1 || output.Skipped != 1 {
		t.Errorf("unexpected import output: %+v", output)
	}

	got := targetRepo.snapshot()
	if len(got) != 3 {
		t.Fatalf("expected union of 3 prompts, got %d", len(got))
	}
	if diff := cmp.Diff(onlySource.Text, got[2].Text); diff != "" {
		t.Errorf("imported prompt mismatch (-want +got):\n%s", diff)
	}
	if got[2].ID != onlySource.ID || got[2].Source != domain.PromptSourceEdited {
		t.Errorf("expected imported prompt to keep its identity, got %+v", got[2])
	}

	again, err := target.Import(ctx, strings.NewReader(exported))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Added != 0 {
		t.Errorf("expected second import to be a no-op, got %+v", again)
	}
}

func TestSnapshotService_Import_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed", input: `{"version":`},
		{name: "wrong version", input: `{"version":99,"prompts":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSnapshotService(newMockPromptRepository(), discardLogger())
			_, err := svc.Import(context.Background(), strings.NewReader(tt.input))
			if !errors.Is(err, ErrInvalidArguments) {
				t.Fatalf("expected ErrInvalidArguments, got %v", err)
			}
		})
	}
}

func TestSnapshotService_Import_SkipsInvalidPrompts(t *testing.T) {
	repo := newMockPromptRepository()
	svc := NewSnapshotService(repo, discardLogger())

	input := `{"version":1,"prompts":[
		{"id":"1","kind":"TRUTH","rating":"PG","text":"ok"},
		{"id":"2","kind":"CHESS","rating":"PG","text":"bad kind"},
		{"id":"3","kind":"DARE","rating":"PG","text":""}
	]}`

	output, err := svc.Import(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Added != 1 || output.Invalid != 2 {
		t.Errorf("unexpected output: %+v", output)
	}
	if got := repo.snapshot(); len(got) != 1 || got[0].Source != domain.PromptSourceImport {
		t.Errorf("expected one prompt tagged as imported, got %+v", got)
	}
}

func TestSnapshotService_Import_NormalizesKindAndRating(t *testing.T) {
	ctx := context.Background()
	repo := infrastructure.NewMemoryPromptRepository(infrastructure.NewGuard())
	svc := NewSnapshotService(repo, discardLogger())

	input := `{"version":1,"prompts":[
		{"id":"1","kind":"truth","rating":"pg-13","text":"What scares you?"},
		{"id":"2","kind":"wyr","rating":"r","text":"Fly or swim?"}
	]}`

	output, err := svc.Import(ctx, strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if output.Added != 2 {
		t.Fatalf("expected 2 added, got %+v", output)
	}

	truth, err := repo.Sample(ctx, domain.KindTruth, domain.RatingPG13)
	if err != nil {
		t.Fatalf("imported truth not servable: %v", err)
	}
	if truth.Kind != domain.KindTruth || truth.Rating != domain.RatingPG13 {
		t.Errorf("expected canonical kind and rating, got %s/%s", truth.Kind, truth.Rating)
	}

	if _, err := repo.Sample(ctx, domain.KindWouldYouRather, domain.RatingR); err != nil {
		t.Errorf("imported would-you-rather not servable: %v", err)
	}
}
