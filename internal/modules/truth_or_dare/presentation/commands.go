package presentation

import (
	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
)

// Command and option names.
const (
	CommandSuggest = "suggest"

	optionRating     = "rating"
	optionType       = "type"
	optionSuggestion = "suggestion"
)

// Commands returns all slash commands for the truth or dare module.
func Commands() []*discordgo.ApplicationCommand {
	commands := make([]*discordgo.ApplicationCommand, 0, len(domain.Kinds)+1)

	for _, kind := range domain.Kinds {
		commands = append(commands, &discordgo.ApplicationCommand{
			Name:        kind.CommandName(),
			Description: "Get a random " + kind.Label() + " question",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionRating,
					Description: "Rating of the question (defaults to PG or PG-13)",
					Required:    false,
					Choices:     ratingChoices(),
				},
			},
		})
	}

	commands = append(commands, &discordgo.ApplicationCommand{
		Name:        CommandSuggest,
		Description: "Suggest a new question",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionType,
				Description: "Type of question",
				Required:    true,
				Choices:     kindChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionSuggestion,
				Description: "Your question",
				Required:    true,
				MaxLength:   domain.MaxSuggestionLength,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionRating,
				Description: "Rating of the question",
				Required:    true,
				Choices:     ratingChoices(),
			},
		},
	})

	return commands
}

func ratingChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.Ratings))
	for _, rating := range domain.Ratings {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  rating.Label(),
			Value: rating.Lower(),
		})
	}
	return choices
}

func kindChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  kind.Label(),
			Value: kind.Token(),
		})
	}
	return choices
}
