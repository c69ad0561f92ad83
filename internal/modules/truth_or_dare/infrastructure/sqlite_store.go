package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS prompts (
	id         INTEGER PRIMARY KEY,
	kind       TEXT NOT NULL,
	rating     TEXT NOT NULL,
	text       TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS prompts_kind_rating ON prompts (kind, rating);

CREATE TABLE IF NOT EXISTS seen_source_ids (
	source_id TEXT PRIMARY KEY,
	seen_at   INTEGER NOT NULL
);
`

// SQLiteStore keeps the prompt pool and the catalog ledger in a SQLite database.
// It implements both PromptRepository and SeenStore.
type SQLiteStore struct {
	db    *sql.DB
	guard ports.ExclusiveAccess
}

// OpenSQLiteStore opens (creating if needed) the database at path. The special path
// ":memory:" opens a private in-memory database.
func OpenSQLiteStore(ctx context.Context, path string, guard ports.ExclusiveAccess) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and writes ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteStore{db: db, guard: guard}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append inserts a prompt.
func (s *SQLiteStore) Append(ctx context.Context, prompt domain.Prompt) error {
	prompt = prompt.Normalize()
	if err := prompt.Validate(); err != nil {
		return err
	}

	return s.guard.WithExclusiveAccess(ctx, promptsKey, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO prompts (id, kind, rating, text, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			int64(prompt.ID),
			string(prompt.Kind),
			string(prompt.Rating),
			prompt.Text,
			string(prompt.Source),
			prompt.CreatedAt.UnixMilli(),
		)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return fmt.Errorf("%w: %s", ErrDuplicatePrompt, prompt.ID)
			}
			return fmt.Errorf("failed to insert prompt: %w", err)
		}
		return nil
	})
}

// Sample returns a random prompt of the given kind and rating.
func (s *SQLiteStore) Sample(
	ctx context.Context,
	kind domain.Kind,
	rating domain.Rating,
) (domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, rating, text, source, created_at FROM prompts
		 WHERE kind = ? AND rating = ? ORDER BY RANDOM() LIMIT 1`,
		string(kind.Normalize()), string(rating.Normalize()),
	)

	prompt, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Prompt{}, domain.ErrNoPrompt
	}
	if err != nil {
		return domain.Prompt{}, fmt.Errorf("failed to sample prompt: %w", err)
	}
	return prompt, nil
}

// Count returns the number of prompts of the given kind and rating.
func (s *SQLiteStore) Count(ctx context.Context, kind domain.Kind, rating domain.Rating) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM prompts WHERE kind = ? AND rating = ?`,
		string(kind.Normalize()), string(rating.Normalize()),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count prompts: %w", err)
	}
	return n, nil
}

// All returns every prompt in insertion order.
func (s *SQLiteStore) All(ctx context.Context) ([]domain.Prompt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, rating, text, source, created_at FROM prompts ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prompts []domain.Prompt
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

// Seen reports whether sourceID was recorded.
func (s *SQLiteStore) Seen(ctx context.Context, sourceID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM seen_source_ids WHERE source_id = ?`, sourceID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up source id: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records sourceID and reports whether it was new.
func (s *SQLiteStore) MarkSeen(ctx context.Context, sourceID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO seen_source_ids (source_id, seen_at) VALUES (?, ?)`,
		sourceID, time.Now().UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record source id: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to record source id: %w", err)
	}
	return n == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPrompt(row rowScanner) (domain.Prompt, error) {
	var (
		id        int64
		kind      string
		rating    string
		prompt    domain.Prompt
		createdAt int64
	)
	if err := row.Scan(&id, &kind, &rating, &prompt.Text, &prompt.Source, &createdAt); err != nil {
		return domain.Prompt{}, err
	}
	prompt.ID = domain.PromptID(id)
	prompt.Kind = domain.Kind(kind)
	prompt.Rating = domain.Rating(rating)
	prompt.CreatedAt = time.UnixMilli(createdAt).UTC()
	return prompt, nil
}

// Compile-time checks.
var (
	_ domain.PromptRepository = (*SQLiteStore)(nil)
	_ ports.SeenStore         = (*SQLiteStore)(nil)
)
