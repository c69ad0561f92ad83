package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestBot(modules ...Module) *Bot {
	b := NewBot(&Config{DiscordToken: "test-token", FollowupTimeout: time.Second}, testLogger())
	b.modules = modules
	b.buildHandlerMap()
	return b
}

func commandInteraction(name string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "100",
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: name},
	}
}

func componentInteraction(customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "101",
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
	}
}

func modalInteraction(customID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "102",
		Type: discordgo.InteractionModalSubmit,
		Data: discordgo.ModalSubmitInteractionData{CustomID: customID},
	}
}

func contentHandler(content string) InteractionHandler {
	return func(_ context.Context, _ *discordgo.Interaction, r Responder) error {
		return r.Respond(&discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content},
		})
	}
}

func TestBot_InitModules_ReturnsInitError(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"}, testLogger())

	expectedErr := errors.New("init failed")
	b.modules = []Module{&stubModule{name: "failing", initErr: expectedErr}}

	err := b.initModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_LoadModuleConfigs(t *testing.T) {
	b := NewBot(&Config{}, testLogger())

	loaded := false
	b.modules = []Module{
		&stubModule{name: "plain"},
		&configurableStubModule{stubModule: stubModule{name: "configured"}, loaded: &loaded},
	}

	if err := b.loadModuleConfigs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded {
		t.Error("expected LoadConfig to be called")
	}
}

func TestBot_BuildHandlerMap_MultipleModules(t *testing.T) {
	b := newTestBot(
		&stubModule{
			name:     "mod1",
			handlers: map[string]InteractionHandler{"cmd1": contentHandler("1")},
		},
		&stubModule{
			name:       "mod2",
			handlers:   map[string]InteractionHandler{"cmd2": contentHandler("2")},
			components: map[string]InteractionHandler{"new": contentHandler("3")},
			modals:     map[string]InteractionHandler{"edit": contentHandler("4")},
		},
	)

	if len(b.commandHandlers) != 2 {
		t.Errorf("expected 2 command handlers, got %d", len(b.commandHandlers))
	}
	if _, ok := b.componentHandlers["new"]; !ok {
		t.Error("expected component handler to be registered")
	}
	if _, ok := b.modalHandlers["edit"]; !ok {
		t.Error("expected modal handler to be registered")
	}
}

func TestBot_CollectCommands(t *testing.T) {
	b := newTestBot(&stubModule{
		name:     "test",
		commands: []*discordgo.ApplicationCommand{{Name: "truth", Description: "Get a truth"}},
	})

	commands := b.collectCommands()

	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].Name != "truth" {
		t.Errorf("expected command name %q, got %q", "truth", commands[0].Name)
	}
}

func TestBot_Dispatch(t *testing.T) {
	b := newTestBot(&stubModule{
		name:       "test",
		handlers:   map[string]InteractionHandler{"truth": contentHandler("command")},
		components: map[string]InteractionHandler{"accept": contentHandler("component")},
		modals:     map[string]InteractionHandler{"edit": contentHandler("modal")},
	})

	tests := []struct {
		name        string
		interaction *discordgo.Interaction
		wantType    discordgo.InteractionResponseType
		wantContent string
		wantTitle   string
	}{
		{
			name:        "ping",
			interaction: &discordgo.Interaction{Type: discordgo.InteractionPing},
			wantType:    discordgo.InteractionResponsePong,
		},
		{
			name:        "command",
			interaction: commandInteraction("truth"),
			wantType:    discordgo.InteractionResponseChannelMessageWithSource,
			wantContent: "command",
		},
		{
			name:        "unknown command",
			interaction: commandInteraction("paranoia"),
			wantType:    discordgo.InteractionResponseChannelMessageWithSource,
			wantTitle:   "Unknown Command",
		},
		{
			name:        "component routed by prefix",
			interaction: componentInteraction("accept_DARE_abcd1234_PG"),
			wantType:    discordgo.InteractionResponseChannelMessageWithSource,
			wantContent: "component",
		},
		{
			name:        "modal routed by prefix",
			interaction: modalInteraction("edit_DARE_abcd1234_PG"),
			wantType:    discordgo.InteractionResponseChannelMessageWithSource,
			wantContent: "modal",
		},
		{
			name:        "unknown component",
			interaction: componentInteraction("explode_DARE_x_PG"),
			wantType:    discordgo.InteractionResponseChannelMessageWithSource,
			wantTitle:   "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			responder := &MockResponder{}
			if err := b.Dispatch(context.Background(), tt.interaction, responder); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if responder.LastResponse == nil {
				t.Fatal("expected response, got nil")
			}
			if responder.LastResponse.Type != tt.wantType {
				t.Errorf("expected response type %d, got %d", tt.wantType, responder.LastResponse.Type)
			}
			if tt.wantContent != "" && responder.LastResponse.Data.Content != tt.wantContent {
				t.Errorf("expected content %q, got %q", tt.wantContent, responder.LastResponse.Data.Content)
			}
			if tt.wantTitle != "" {
				embeds := responder.LastResponse.Data.Embeds
				if len(embeds) != 1 || embeds[0].Title != tt.wantTitle {
					t.Errorf("expected embed titled %q, got %+v", tt.wantTitle, embeds)
				}
			}
		})
	}
}

func TestBot_Dispatch_HandlerErrorBecomesErrorEmbed(t *testing.T) {
	b := newTestBot(&stubModule{
		name: "test",
		handlers: map[string]InteractionHandler{
			"truth": func(context.Context, *discordgo.Interaction, Responder) error {
				return errors.New("store unavailable")
			},
		},
	})

	responder := NewWebhookResponder()
	if err := b.Dispatch(context.Background(), commandInteraction("truth"), responder); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	response := responder.Response()
	if response == nil || len(response.Data.Embeds) != 1 || response.Data.Embeds[0].Title != "Error" {
		t.Fatalf("expected error embed, got %+v", response)
	}
}

func TestBot_RunAfterResponse_StopWaits(t *testing.T) {
	b := newTestBot()

	var ran atomic.Int32
	b.RunAfterResponse([]func(ctx context.Context){
		func(context.Context) {
			time.Sleep(20 * time.Millisecond)
			ran.Add(1)
		},
		func(context.Context) { panic("boom") },
		func(ctx context.Context) {
			if _, ok := ctx.Deadline(); ok {
				ran.Add(1)
			}
		},
	})

	if err := b.Stop(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ran.Load(); got != 2 {
		t.Errorf("expected 2 tasks to complete around the panic, got %d", got)
	}
}

// configurableStubModule is a stub that tracks if LoadConfig was called
type configurableStubModule struct {
	stubModule
	loaded *bool
}

func (m *configurableStubModule) LoadConfig() error {
	*m.loaded = true
	return nil
}
