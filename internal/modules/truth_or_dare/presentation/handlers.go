package presentation

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/todbot/internal/bot"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/usecases"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// Handlers holds all the interaction handlers of the module.
type Handlers struct {
	prompts     *usecases.PromptService
	suggestions *usecases.SuggestionService
	controls    *usecases.ControlsService
	logger      *slog.Logger
}

// NewHandlers creates new Handlers.
func NewHandlers(
	prompts *usecases.PromptService,
	suggestions *usecases.SuggestionService,
	controls *usecases.ControlsService,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		prompts:     prompts,
		suggestions: suggestions,
		controls:    controls,
		logger:      logger,
	}
}

// HandleServe handles the /truth, /dare, and /would-you-rather commands.
func (h *Handlers) HandleServe(ctx context.Context, i *discordgo.Interaction, r bot.Responder) error {
	data := i.ApplicationCommandData()

	var rawRating string
	for _, opt := range data.Options {
		if opt.Name == optionRating {
			rawRating = opt.StringValue()
		}
	}

	args, err := domain.NewServeArgs(data.Name, rawRating)
	if err != nil {
		h.logger.Warn("invalid serve command", "command", data.Name, "error", err)
		return respondError(r, msgMalformed)
	}

	_, err = h.serve(ctx, i, r, args.Kind, args.Rating)
	return err
}

// HandleSuggest handles the /suggest command.
func (h *Handlers) HandleSuggest(ctx context.Context, i *discordgo.Interaction, r bot.Responder) error {
	var rawKind, text, rawRating string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case optionType:
			rawKind = opt.StringValue()
		case optionSuggestion:
			text = opt.StringValue()
		case optionRating:
			rawRating = opt.StringValue()
		}
	}

	args, err := domain.NewSuggestArgs(rawKind, text, rawRating)
	if err != nil {
		return respondError(r, "Invalid suggestion: "+err.Error())
	}

	_, err = h.suggestions.Submit(ctx, usecases.SubmitInput{
		Args:        args,
		SubmitterID: submitterID(i),
	})
	if err != nil {
		h.logger.Error("failed to submit suggestion", "interaction_id", i.ID, "error", err)
		return respondError(r, msgUnavailable)
	}

	return respondEphemeral(r, msgSuggestionSent)
}

// HandleComponent handles button presses on prompts and moderation cards.
func (h *Handlers) HandleComponent(ctx context.Context, i *discordgo.Interaction, r bot.Responder) error {
	customID := i.MessageComponentData().CustomID
	action, err := domain.ParseAction(customID)
	if err != nil {
		h.logger.Warn("malformed component action", "custom_id", customID, "error", err)
		return respondError(r, msgMalformed)
	}

	switch a := action.(type) {
	case domain.ServeAnother:
		return h.handleServeAnother(ctx, i, r, a)
	case domain.Accept:
		return h.handleAccept(ctx, i, r, a)
	case domain.Deny:
		return h.handleDeny(ctx, i, r, a)
	case domain.OpenEdit:
		return h.handleOpenEdit(ctx, i, r, a)
	default:
		h.logger.Warn("action not valid on a button", "custom_id", customID)
		return respondError(r, msgMalformed)
	}
}

// HandleModal handles submission of the edit modal.
func (h *Handlers) HandleModal(ctx context.Context, i *discordgo.Interaction, r bot.Responder) error {
	data := i.ModalSubmitData()
	action, err := domain.ParseAction(data.CustomID)
	if err != nil {
		h.logger.Warn("malformed modal action", "custom_id", data.CustomID, "error", err)
		return respondError(r, msgMalformed)
	}
	edit, ok := action.(domain.SubmitEdit)
	if !ok {
		h.logger.Warn("action not valid on a modal", "custom_id", data.CustomID)
		return respondError(r, msgMalformed)
	}

	values := modalValues(data)
	output, err := h.suggestions.SubmitEdit(ctx, usecases.SubmitEditInput{
		Ref:       edit.SuggestionRef,
		Text:      values[fieldEditedQuestion],
		RawRating: values[fieldEditedRating],
	})
	if err != nil {
		return h.respondModerationError(i, r, edit.Handle, err)
	}

	return respondOutcome(r, "Suggestion Accepted", "accepted (edited)", output.Suggestion)
}

// serve responds with a random prompt and reports whether one was found.
func (h *Handlers) serve(
	ctx context.Context,
	i *discordgo.Interaction,
	r bot.Responder,
	kind domain.Kind,
	requested domain.Rating,
) (bool, error) {
	output, err := h.prompts.Serve(ctx, usecases.ServeInput{Kind: kind, Rating: requested})
	if errors.Is(err, domain.ErrNoPrompt) {
		return false, respondEphemeral(r, msgNoPrompt)
	}
	if err != nil {
		h.logger.Error("failed to serve prompt", "interaction_id", i.ID, "kind", kind, "error", err)
		return false, respondError(r, msgUnavailable)
	}

	// Without a correlation only the later button cleanup is lost.
	_ = h.controls.Remember(ctx, i.ID, i.Token)

	return true, respondPrompt(r, output.Prompt, requested)
}

func (h *Handlers) handleServeAnother(
	ctx context.Context,
	i *discordgo.Interaction,
	r bot.Responder,
	a domain.ServeAnother,
) error {
	served, err := h.serve(ctx, i, r, a.Kind, a.Rating)
	if err != nil || !served {
		return err
	}

	input := usecases.ClearControlsInput{ChannelID: i.ChannelID}
	if i.Message != nil {
		input.MessageID = i.Message.ID
		if i.Message.InteractionMetadata != nil {
			input.OriginInteractionID = i.Message.InteractionMetadata.ID
		}
	}
	r.AfterResponse(func(ctx context.Context) {
		h.controls.ClearOrigin(ctx, input)
	})
	return nil
}

func (h *Handlers) handleAccept(
	ctx context.Context,
	i *discordgo.Interaction,
	r bot.Responder,
	a domain.Accept,
) error {
	output, err := h.suggestions.Accept(ctx, usecases.ModerateInput{
		Ref:          a.SuggestionRef,
		FallbackText: cardText(i.Message),
	})
	if err != nil {
		return h.respondModerationError(i, r, a.Handle, err)
	}
	return respondOutcome(r, "Suggestion Accepted", "accepted", output.Suggestion)
}

func (h *Handlers) handleDeny(
	ctx context.Context,
	i *discordgo.Interaction,
	r bot.Responder,
	a domain.Deny,
) error {
	output, err := h.suggestions.Deny(ctx, usecases.ModerateInput{
		Ref:          a.SuggestionRef,
		FallbackText: cardText(i.Message),
	})
	if err != nil {
		return h.respondModerationError(i, r, a.Handle, err)
	}
	return respondOutcome(r, "Suggestion Denied", "denied", output.Suggestion)
}

func (h *Handlers) handleOpenEdit(
	ctx context.Context,
	i *discordgo.Interaction,
	r bot.Responder,
	a domain.OpenEdit,
) error {
	output, err := h.suggestions.OpenEdit(ctx, usecases.ModerateInput{
		Ref:          a.SuggestionRef,
		FallbackText: cardText(i.Message),
	})
	if err != nil {
		return h.respondModerationError(i, r, a.Handle, err)
	}
	return respondEditModal(r, output.Suggestion, a.SuggestionRef)
}

// respondModerationError maps a moderation failure to a message for the moderator.
func (h *Handlers) respondModerationError(
	i *discordgo.Interaction,
	r bot.Responder,
	handle domain.Handle,
	err error,
) error {
	logger := h.logger.With("interaction_id", i.ID, "handle", handle, "error", err)

	switch {
	case errors.Is(err, domain.ErrSuggestionNotFound):
		logger.Warn("moderation on unknown suggestion")
		return respondEphemeral(r, msgSuggestionMissing)
	case errors.Is(err, usecases.ErrInvalidArguments):
		logger.Info("rejected invalid edit")
		return respondError(r, "Invalid edit: use a non-empty question and a rating of PG, PG-13, or R.")
	default:
		logger.Error("moderation failed")
		return respondError(r, msgUnavailable)
	}
}

// submitterID returns the ID of the user who invoked the interaction.
func submitterID(i *discordgo.Interaction) snowflake.ID {
	var userID string
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}
	id, _ := snowflake.Parse(userID)
	return id
}
