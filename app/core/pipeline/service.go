package pipeline

import (
	"context"
	"errors"
	"fmt"

	"trendpulse/app/core/store"
	"trendpulse/app/pkg/types"
)

// ChatAction classifies the outcome of a chat message.
type ChatAction string

const (
	ActionTaskCreated   ChatAction = "TASK_CREATED"
	ActionAlreadyExists ChatAction = "ALREADY_EXISTS"
	ActionChatOnly      ChatAction = "CHAT_ONLY"
)

type ChatReply struct {
	Reply  string      `json:"reply"`
	Action ChatAction  `json:"action"`
	Task   *types.Task `json:"task,omitempty"`
}

// Service exposes the user-facing pipeline operations: the chat intent
// flow, task management, result history, and the manual trigger. Every
// operation is scoped to the authenticated user id it receives.
type Service struct {
	tasks       *store.Tasks
	results     *store.Results
	parser      IntentParser
	processor   *Processor
	resultLimit int
}

func NewService(tasks *store.Tasks, results *store.Results, parser IntentParser, processor *Processor, resultLimit int) *Service {
	if resultLimit <= 0 {
		resultLimit = 50
	}
	return &Service{
		tasks:       tasks,
		results:     results,
		parser:      parser,
		processor:   processor,
		resultLimit: resultLimit,
	}
}

// Chat parses a free-text message. A detected topic creates a task unless
// the user already tracks it (case-insensitive); everything else is a
// conversational reply.
func (s *Service) Chat(ctx context.Context, userID string, message string) (ChatReply, error) {
	intent := s.parser.ParseIntent(ctx, message)
	if intent.Topic == "" {
		reply := intent.Confirmation
		if reply == "" {
			reply = "I didn't understand that. Try 'Track Bitcoin'."
		}
		return ChatReply{Reply: reply, Action: ActionChatOnly}, nil
	}

	task, err := s.tasks.Create(ctx, userID, intent.Topic, NormalizeCadence(intent.Frequency))
	if errors.Is(err, store.ErrDuplicateTopic) {
		return ChatReply{
			Reply:  fmt.Sprintf("I'm already tracking %s for you! Check your dashboard to see the latest insights.", task.Topic),
			Action: ActionAlreadyExists,
		}, nil
	}
	if err != nil {
		return ChatReply{}, err
	}
	return ChatReply{Reply: intent.Confirmation, Action: ActionTaskCreated, Task: &task}, nil
}

// Run is the manual trigger: it processes the task synchronously and
// returns the created result. A missing or foreign task id yields
// store.ErrTaskNotFound.
func (s *Service) Run(ctx context.Context, userID string, taskID string) (types.AnalysisResult, error) {
	task, err := s.tasks.GetOwned(ctx, userID, taskID)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	return s.processor.Process(ctx, task)
}

func (s *Service) ListTasks(ctx context.Context, userID string) ([]types.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Toggle flips a task's active flag and returns the updated task.
func (s *Service) Toggle(ctx context.Context, userID string, taskID string) (types.Task, error) {
	task, err := s.tasks.GetOwned(ctx, userID, taskID)
	if err != nil {
		return types.Task{}, err
	}
	if err := s.tasks.SetActive(ctx, task.ID, !task.IsActive); err != nil {
		return types.Task{}, err
	}
	task.IsActive = !task.IsActive
	return task, nil
}

// Delete removes a task. Its results stay behind until the next orphan
// sweep.
func (s *Service) Delete(ctx context.Context, userID string, taskID string) error {
	task, err := s.tasks.GetOwned(ctx, userID, taskID)
	if err != nil {
		return err
	}
	return s.tasks.Delete(ctx, task.ID)
}

func (s *Service) Results(ctx context.Context, userID string) ([]types.AnalysisResult, error) {
	return s.results.ListByUser(ctx, userID, s.resultLimit)
}
