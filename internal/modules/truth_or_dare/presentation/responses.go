package presentation

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/bot"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// Edit modal field IDs.
const (
	fieldEditedQuestion = "edited_question"
	fieldEditedRating   = "edited_rating"
)

// User-facing messages.
const (
	msgNoPrompt          = "No data found for the requested command."
	msgSuggestionSent    = "Your suggestion has been sent for review."
	msgSuggestionMissing = "This suggestion is no longer available."
	msgUnavailable       = "Something went wrong. Please try again later."
	msgMalformed         = "This action is not recognized."
)

const colorError = 0xE74C3C

// noMentions keeps prompt and card text from pinging anyone.
func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

// respondPrompt sends a prompt with buttons for another round. requested is the
// rating the user asked for, empty when they asked for none.
func respondPrompt(r bot.Responder, prompt domain.Prompt, requested domain.Rating) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:          []*discordgo.MessageEmbed{promptEmbed(prompt)},
			Components:      serveButtons(requested),
			AllowedMentions: noMentions(),
		},
	})
}

func promptEmbed(prompt domain.Prompt) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: prompt.Text,
		Color: domain.EmbedColor(prompt.Kind, prompt.Rating),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Type: %s | Rating: %s | ID: %s", prompt.Kind.Token(), prompt.Rating, prompt.ID),
		},
	}
}

func serveButtons(requested domain.Rating) []discordgo.MessageComponent {
	styles := map[domain.Kind]discordgo.ButtonStyle{
		domain.KindTruth:          discordgo.PrimaryButton,
		domain.KindDare:           discordgo.DangerButton,
		domain.KindWouldYouRather: discordgo.SecondaryButton,
	}

	buttons := make([]discordgo.MessageComponent, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		buttons = append(buttons, discordgo.Button{
			Label:    kind.Label(),
			Style:    styles[kind],
			CustomID: domain.ServeAnother{Kind: kind, Rating: requested}.CustomID(),
		})
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

// respondEphemeral sends a message only the invoking user can see.
func respondEphemeral(r bot.Responder, content string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: noMentions(),
		},
	})
}

// respondError sends an ephemeral error embed.
func respondError(r bot.Responder, message string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Error",
					Description: message,
					Color:       colorError,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// respondOutcome replaces a moderation card with its final state and drops the
// buttons.
func respondOutcome(r bot.Responder, title, verb string, s domain.PendingSuggestion) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title: title,
					Description: fmt.Sprintf("Suggestion %s: %q\nType: %s\nRating: %s",
						verb, s.Text, s.Kind.Label(), s.Rating.Label()),
					Color: domain.EmbedColor(s.Kind, s.Rating),
					Fields: []*discordgo.MessageEmbedField{
						{Name: "Type", Value: s.Kind.Label(), Inline: true},
						{Name: "Rating", Value: s.Rating.Label(), Inline: true},
					},
					Footer: &discordgo.MessageEmbedFooter{
						Text: "Handle: " + string(s.Handle),
					},
				},
			},
			Components:      []discordgo.MessageComponent{},
			AllowedMentions: noMentions(),
		},
	})
}

// respondEditModal opens the edit modal pre-filled with the suggestion.
func respondEditModal(r bot.Responder, s domain.PendingSuggestion, ref domain.SuggestionRef) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: domain.SubmitEdit{SuggestionRef: ref}.CustomID(),
			Title:    "Edit Suggestion",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:  fieldEditedQuestion,
							Label:     "Edit Question",
							Style:     discordgo.TextInputParagraph,
							Value:     s.Text,
							Required:  true,
							MaxLength: domain.MaxSuggestionLength,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    fieldEditedRating,
							Label:       "Edit Rating",
							Style:       discordgo.TextInputShort,
							Value:       s.Rating.Label(),
							Placeholder: "PG, PG-13, or R",
							Required:    true,
							MaxLength:   5,
						},
					},
				},
			},
		},
	})
}

// modalValues collects the text inputs of a submitted modal by custom ID.
func modalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range row.Components {
			if input, ok := c.(*discordgo.TextInput); ok {
				values[input.CustomID] = input.Value
			}
		}
	}
	return values
}

// cardText returns the suggestion text shown on a moderation card, if any.
func cardText(message *discordgo.Message) string {
	if message == nil || len(message.Embeds) == 0 {
		return ""
	}
	return message.Embeds[0].Description
}
