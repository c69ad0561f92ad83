package presentation

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/ports"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/usecases"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/infrastructure"
)

// fakeModeration records posted review cards.
type fakeModeration struct {
	mu     sync.Mutex
	posted []domain.PendingSuggestion
}

func (f *fakeModeration) PostSuggestion(_ context.Context, s domain.PendingSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, s)
	return nil
}

func (f *fakeModeration) last() domain.PendingSuggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posted[len(f.posted)-1]
}

// fakeEditor records control-stripping edits.
type fakeEditor struct {
	mu       sync.Mutex
	tokens   []string
	messages []string
}

func (f *fakeEditor) ClearInteractionControls(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakeEditor) ClearMessageControls(_ context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, channelID+"/"+messageID)
	return nil
}

type handlerFixture struct {
	handlers     *Handlers
	prompts      *infrastructure.MemoryPromptRepository
	suggestions  *infrastructure.MemorySuggestionCache
	correlations *infrastructure.MemoryCorrelationCache
	moderation   *fakeModeration
	editor       *fakeEditor
}

func newHandlerFixture() *handlerFixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	guard := infrastructure.NewGuard()

	f := &handlerFixture{
		prompts:      infrastructure.NewMemoryPromptRepository(guard),
		suggestions:  infrastructure.NewMemorySuggestionCache(guard, time.Hour),
		correlations: infrastructure.NewMemoryCorrelationCache(),
		moderation:   &fakeModeration{},
		editor:       &fakeEditor{},
	}

	promptService := usecases.NewPromptService(f.prompts, func() domain.Rating { return domain.RatingPG })
	suggestionService := usecases.NewSuggestionService(f.suggestions, f.prompts, f.moderation, guard, logger)
	controlsService := usecases.NewControlsService(f.correlations, f.editor, time.Minute, logger)
	f.handlers = NewHandlers(promptService, suggestionService, controlsService, logger)

	return f
}

func (f *handlerFixture) seed(kind domain.Kind, rating domain.Rating, text string) domain.Prompt {
	p := domain.NewPrompt(kind, rating, text, domain.PromptSourceSuggestion)
	if err := f.prompts.Append(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func commandInteraction(
	id, token, name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        id,
		Token:     token,
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "500",
		Member: &discordgo.Member{
			User: &discordgo.User{ID: "123456789012345678"},
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}
}

func componentInteraction(id, customID string, message *discordgo.Message) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        id,
		Token:     "tok-" + id,
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: "500",
		Message:   message,
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func modalInteraction(id, customID string, values map[string]string) *discordgo.Interaction {
	rows := make([]discordgo.MessageComponent, 0, len(values))
	for _, field := range []string{fieldEditedQuestion, fieldEditedRating} {
		value, ok := values[field]
		if !ok {
			continue
		}
		rows = append(rows, &discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: field, Value: value},
			},
		})
	}

	return &discordgo.Interaction{
		ID:    id,
		Token: "tok-" + id,
		Type:  discordgo.InteractionModalSubmit,
		Data: discordgo.ModalSubmitInteractionData{
			CustomID:   customID,
			Components: rows,
		},
	}
}

// cardMessage imitates a posted moderation card showing text.
func cardMessage(text string) *discordgo.Message {
	return &discordgo.Message{
		ID:     "700",
		Embeds: []*discordgo.MessageEmbed{{Title: "New Question Suggestion", Description: text}},
	}
}

func buttonIDs(components []discordgo.MessageComponent) []string {
	var ids []string
	for _, c := range components {
		row, ok := c.(discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, b := range row.Components {
			if button, ok := b.(discordgo.Button); ok {
				ids = append(ids, button.CustomID)
			}
		}
	}
	return ids
}

// Compile-time checks.
var (
	_ ports.ModerationChannel = (*fakeModeration)(nil)
	_ ports.MessageEditor     = (*fakeEditor)(nil)
)
