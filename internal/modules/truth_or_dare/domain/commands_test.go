package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewServeArgs(t *testing.T) {
	args, err := NewServeArgs("would-you-rather", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Kind != KindWouldYouRather || args.Rating != "" {
		t.Errorf("unexpected args: %+v", args)
	}

	args, err = NewServeArgs("truth", "pg13")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Rating != RatingPG13 {
		t.Errorf("expected PG13, got %q", args.Rating)
	}

	if _, err := NewServeArgs("truth", "xxx"); !errors.Is(err, ErrInvalidRating) {
		t.Errorf("expected ErrInvalidRating, got %v", err)
	}
	if _, err := NewServeArgs("ping", ""); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("expected ErrInvalidKind, got %v", err)
	}
}

func TestNewSuggestArgs(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		text    string
		rating  string
		wantErr error
	}{
		{name: "valid", kind: "DARE", text: "Sing a song", rating: "pg"},
		{name: "missing kind", kind: "", text: "x", rating: "pg", wantErr: ErrInvalidKind},
		{name: "missing rating", kind: "DARE", text: "x", rating: "", wantErr: ErrInvalidRating},
		{name: "missing text", kind: "DARE", text: "   ", rating: "pg", wantErr: ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := NewSuggestArgs(tt.kind, tt.text, tt.rating)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if args.Kind != KindDare || args.Rating != RatingPG || args.Text != "Sing a song" {
				t.Errorf("unexpected args: %+v", args)
			}
		})
	}
}

func TestNewSuggestArgs_TooLong(t *testing.T) {
	_, err := NewSuggestArgs("truth", strings.Repeat("a", MaxSuggestionLength+1), "pg")
	if err == nil {
		t.Error("expected error for overlong suggestion")
	}
}
