package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ErrAlreadyResponded is returned when an interaction is answered twice.
var ErrAlreadyResponded = errors.New("interaction already responded")

// Responder provides an abstraction for responding to Discord interactions.
// This interface enables testing handlers without a live Discord connection.
type Responder interface {
	// Respond sets the response to an interaction. Only the first call succeeds.
	Respond(response *discordgo.InteractionResponse) error

	// AfterResponse schedules a task to run once the response has been delivered.
	// Tasks run with their own deadline and must not assume the request is still open.
	AfterResponse(task func(ctx context.Context))
}

// WebhookResponder captures the response so the HTTP handler can write it as the
// body of the webhook reply.
type WebhookResponder struct {
	mu       sync.Mutex
	response *discordgo.InteractionResponse
	tasks    []func(ctx context.Context)
}

// NewWebhookResponder creates a new WebhookResponder.
func NewWebhookResponder() *WebhookResponder {
	return &WebhookResponder{}
}

// Respond records the response.
func (r *WebhookResponder) Respond(response *discordgo.InteractionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response != nil {
		return ErrAlreadyResponded
	}
	r.response = response
	return nil
}

// AfterResponse queues a follow-up task.
func (r *WebhookResponder) AfterResponse(task func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

// Response returns the recorded response, or nil if none was set.
func (r *WebhookResponder) Response() *discordgo.InteractionResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.response
}

// Tasks returns the queued follow-up tasks.
func (r *WebhookResponder) Tasks() []func(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := make([]func(ctx context.Context), len(r.tasks))
	copy(tasks, r.tasks)
	return tasks
}

// MockResponder is a test double for Responder.
type MockResponder struct {
	LastResponse *discordgo.InteractionResponse
	Err          error
	Tasks        []func(ctx context.Context)
}

// Respond records the response for testing.
func (m *MockResponder) Respond(response *discordgo.InteractionResponse) error {
	m.LastResponse = response
	return m.Err
}

// AfterResponse records the task for testing.
func (m *MockResponder) AfterResponse(task func(ctx context.Context)) {
	m.Tasks = append(m.Tasks, task)
}

// RunTasks runs the recorded tasks in order.
func (m *MockResponder) RunTasks(ctx context.Context) {
	for _, task := range m.Tasks {
		task(ctx)
	}
}
