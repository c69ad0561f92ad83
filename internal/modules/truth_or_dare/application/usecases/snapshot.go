package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

const snapshotVersion = 1

// Snapshot is the portable form of the prompt pool.
type Snapshot struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Prompts    []domain.Prompt `json:"prompts"`
}

// ImportOutput summarizes an import.
type ImportOutput struct {
	Added   int
	Skipped int
	Invalid int
}

// SnapshotService exports and merges prompt pool snapshots.
type SnapshotService struct {
	prompts domain.PromptRepository
	logger  *slog.Logger
}

// NewSnapshotService creates a new SnapshotService.
func NewSnapshotService(prompts domain.PromptRepository, logger *slog.Logger) *SnapshotService {
	return &SnapshotService{prompts: prompts, logger: logger}
}

// Export writes every prompt as an indented JSON snapshot.
func (s *SnapshotService) Export(ctx context.Context, w io.Writer) (int, error) {
	prompts, err := s.prompts.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC(),
		Prompts:    prompts,
	}); err != nil {
		return 0, fmt.Errorf("failed to write snapshot: %w", err)
	}

	return len(prompts), nil
}

// Import merges a snapshot into the pool. Prompts whose ID is already present are
// skipped, so importing the same snapshot twice is a no-op.
func (s *SnapshotService) Import(ctx context.Context, r io.Reader) (*ImportOutput, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: malformed snapshot: %w", ErrInvalidArguments, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidArguments, snap.Version)
	}

	existing, err := s.prompts.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	known := make(map[domain.PromptID]struct{}, len(existing))
	for _, p := range existing {
		known[p.ID] = struct{}{}
	}

	output := &ImportOutput{}
	for _, p := range snap.Prompts {
		if _, dup := known[p.ID]; dup {
			output.Skipped++
			continue
		}
		p = p.Normalize()
		if err := p.Validate(); err != nil || p.ID == 0 {
			s.logger.Warn("skipped invalid prompt in snapshot", "prompt_id", p.ID, "error", err)
			output.Invalid++
			continue
		}
		if p.Source == "" {
			p.Source = domain.PromptSourceImport
		}
		if err := s.prompts.Append(ctx, p); err != nil {
			return output, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		known[p.ID] = struct{}{}
		output.Added++
	}

	s.logger.Info("imported snapshot",
		"added", output.Added,
		"skipped", output.Skipped,
		"invalid", output.Invalid,
	)
	return output, nil
}
