package infrastructure

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// SuggestionCardTitle is the embed title of a moderation card.
const SuggestionCardTitle = "New Question Suggestion"

// DiscordGateway performs the outbound Discord REST calls of the module.
type DiscordGateway struct {
	session             *discordgo.Session
	appID               string
	suggestionChannelID string
}

// NewDiscordGateway creates a new DiscordGateway that posts moderation cards to
// suggestionChannelID.
func NewDiscordGateway(session *discordgo.Session, appID, suggestionChannelID string) *DiscordGateway {
	return &DiscordGateway{
		session:             session,
		appID:               appID,
		suggestionChannelID: suggestionChannelID,
	}
}

// PostSuggestion sends a moderation card to the suggestion channel.
func (g *DiscordGateway) PostSuggestion(ctx context.Context, suggestion domain.PendingSuggestion) error {
	_, err := g.session.ChannelMessageSendComplex(
		g.suggestionChannelID,
		suggestionCard(suggestion),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to post suggestion card: %w", err)
	}
	return nil
}

// ClearInteractionControls removes the buttons from an interaction's original response.
func (g *DiscordGateway) ClearInteractionControls(ctx context.Context, token string) error {
	_, err := g.session.WebhookMessageEdit(
		g.appID,
		token,
		"@original",
		&discordgo.WebhookEdit{Components: &[]discordgo.MessageComponent{}},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to edit original response: %w", err)
	}
	return nil
}

// ClearMessageControls removes the buttons from a channel message.
func (g *DiscordGateway) ClearMessageControls(ctx context.Context, channelID, messageID string) error {
	_, err := g.session.ChannelMessageEditComplex(
		&discordgo.MessageEdit{
			ID:         messageID,
			Channel:    channelID,
			Components: &[]discordgo.MessageComponent{},
		},
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// suggestionCard renders the moderation card for a pending suggestion.
func suggestionCard(s domain.PendingSuggestion) *discordgo.MessageSend {
	ref := domain.SuggestionRef{Handle: s.Handle, Kind: s.Kind, Rating: s.Rating}

	content := "Automated suggestion for " + strings.ToLower(s.Kind.Label())
	if s.SubmitterID != 0 {
		content = fmt.Sprintf("suggestion from <@%s>", s.SubmitterID)
	}

	return &discordgo.MessageSend{
		Content: content,
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       SuggestionCardTitle,
				Description: s.Text,
				Color:       domain.EmbedColor(s.Kind, s.Rating),
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Type", Value: s.Kind.Label(), Inline: true},
					{Name: "Rating", Value: s.Rating.Label(), Inline: true},
				},
				Footer: &discordgo.MessageEmbedFooter{
					Text: "Handle: " + string(s.Handle),
				},
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Accept",
						Style:    discordgo.SuccessButton,
						CustomID: domain.Accept{SuggestionRef: ref}.CustomID(),
					},
					discordgo.Button{
						Label:    "Edit",
						Style:    discordgo.PrimaryButton,
						CustomID: domain.OpenEdit{SuggestionRef: ref}.CustomID(),
					},
					discordgo.Button{
						Label:    "Deny",
						Style:    discordgo.DangerButton,
						CustomID: domain.Deny{SuggestionRef: ref}.CustomID(),
					},
				},
			},
		},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{},
		},
	}
}

// Compile-time checks.
var (
	_ ports.ModerationChannel = (*DiscordGateway)(nil)
	_ ports.MessageEditor     = (*DiscordGateway)(nil)
)
