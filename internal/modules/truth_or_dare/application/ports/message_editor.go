package ports

import "context"

// MessageEditor defines the interface for stripping controls from earlier messages.
type MessageEditor interface {
	// ClearInteractionControls removes the components of an interaction's original
	// response using the interaction token.
	ClearInteractionControls(ctx context.Context, token string) error

	// ClearMessageControls removes the components of a channel message using the
	// bot credential.
	ClearMessageControls(ctx context.Context, channelID, messageID string) error
}
