package usecases

import (
	"context"
	"log/slog"
	"time"

	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// ClearControlsInput identifies the messages whose buttons should be removed.
type ClearControlsInput struct {
	// OriginInteractionID is the interaction that created the pressed message.
	OriginInteractionID string
	ChannelID           string
	MessageID           string
}

// ClearControlsOutput reports which edits went through.
type ClearControlsOutput struct {
	ClearedOriginal bool
	ClearedMessage  bool
}

// ControlsService tracks served prompts so their buttons can be removed once used.
type ControlsService struct {
	correlations domain.CorrelationCache
	editor       ports.MessageEditor
	ttl          time.Duration
	logger       *slog.Logger
}

// NewControlsService creates a new ControlsService.
func NewControlsService(
	correlations domain.CorrelationCache,
	editor ports.MessageEditor,
	ttl time.Duration,
	logger *slog.Logger,
) *ControlsService {
	return &ControlsService{
		correlations: correlations,
		editor:       editor,
		ttl:          ttl,
		logger:       logger,
	}
}

// Remember records the token of an interaction whose response carries buttons.
func (s *ControlsService) Remember(ctx context.Context, interactionID, token string) error {
	if err := s.correlations.Remember(ctx, interactionID, token, s.ttl); err != nil {
		s.logger.Warn("failed to remember interaction", "interaction_id", interactionID, "error", err)
		return err
	}
	return nil
}

// ClearOrigin strips the buttons from the message a user pressed. Both edits are
// best-effort; failures are logged and reported in the output.
func (s *ControlsService) ClearOrigin(ctx context.Context, input ClearControlsInput) ClearControlsOutput {
	var output ClearControlsOutput
	logger := s.logger.With("origin_interaction_id", input.OriginInteractionID)

	if input.OriginInteractionID != "" {
		token, ok, err := s.correlations.Recall(ctx, input.OriginInteractionID)
		switch {
		case err != nil:
			logger.Warn("failed to recall interaction token", "error", err)
		case !ok:
			logger.Debug("no token for origin interaction")
		default:
			if err := s.editor.ClearInteractionControls(ctx, token); err != nil {
				logger.Warn("failed to clear original response controls", "error", err)
			} else {
				output.ClearedOriginal = true
			}
		}
	}

	if input.ChannelID != "" && input.MessageID != "" {
		if err := s.editor.ClearMessageControls(ctx, input.ChannelID, input.MessageID); err != nil {
			logger.Warn("failed to clear message controls",
				"channel_id", input.ChannelID,
				"message_id", input.MessageID,
				"error", err,
			)
		} else {
			output.ClearedMessage = true
		}
	}

	return output
}
