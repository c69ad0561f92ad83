package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/todbot/internal/bot"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/application/usecases"
	"github.com/sglre6355/todbot/internal/modules/truth_or_dare/domain"
	"github.com/spf13/cobra"
)

var (
	populateKinds       []string
	populateRating      string
	populateCount       int
	populateConcurrency int
	populateDelay       time.Duration
	populateDirect      bool
)

var populateCmd = &cobra.Command{
	Use:   "populate",
	Short: "Pull prompts from the public trivia catalog",
	Long: `Fetches prompts for each kind from the trivia catalog and posts them to the
suggestion channel for review. Source IDs that were pulled before are skipped.

Example:
  todctl populate --kinds truth,dare --count 25 --rating pg13
  todctl populate --direct --count 100`,
	Args: cobra.NoArgs,
	RunE: runPopulate,
}

func init() {
	defaultKinds := make([]string, 0, len(domain.Kinds))
	for _, kind := range domain.Kinds {
		defaultKinds = append(defaultKinds, kind.CommandName())
	}

	flags := populateCmd.Flags()
	flags.StringSliceVar(&populateKinds, "kinds", defaultKinds, "kinds to pull")
	flags.StringVar(&populateRating, "rating", "", "restrict to a rating (pg, pg13, r)")
	flags.IntVar(&populateCount, "count", 10, "prompts to pull per kind")
	flags.IntVar(&populateConcurrency, "concurrency", 2, "parallel catalog requests")
	flags.DurationVar(&populateDelay, "delay", time.Second, "wait before each catalog request")
	flags.BoolVar(&populateDirect, "direct", false, "append to the pool without review")
}

func parseKinds(values []string) ([]domain.Kind, error) {
	kinds := make([]domain.Kind, 0, len(values))
	for _, v := range values {
		kind, ok := domain.ParseKind(strings.TrimSpace(v))
		if !ok {
			return nil, fmt.Errorf("unknown kind %q", v)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, errors.New("at least one kind is required")
	}
	return kinds, nil
}

func runPopulate(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(populateKinds)
	if err != nil {
		return err
	}

	var rating domain.Rating
	if populateRating != "" {
		r, ok := domain.ParseRating(populateRating)
		if !ok {
			return fmt.Errorf("unknown rating %q", populateRating)
		}
		rating = r
	}

	botCfg, err := bot.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := truth_or_dare.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load module config: %w", err)
	}

	ctx := cmd.Context()

	stores, err := truth_or_dare.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			logger.Warn("failed to close stores", "error", err)
		}
	}()

	session, err := discordgo.New("Bot " + botCfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	services, err := truth_or_dare.NewServices(cfg, stores, session, botCfg.AppID, logger)
	if err != nil {
		return err
	}

	output, err := services.Population.Populate(ctx, usecases.PopulateInput{
		Kinds:       kinds,
		Rating:      rating,
		PerKind:     populateCount,
		Direct:      populateDirect,
		Concurrency: populateConcurrency,
		Delay:       populateDelay,
	})
	if output != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "fetched %d, skipped %d, added %d, failed %d\n",
			output.Fetched, output.Skipped, output.Added, output.Failed)
	}
	return err
}
