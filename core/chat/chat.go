package chat

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

const plannerInstructions = " You are an educational scheduling assistant. " +
	"Plan tasks strictly in JSON format according to the rules. Input: "

var ErrMessageRequired = errors.New("Message is required")

type (
	Content struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}

	Message struct {
		Role    string    `json:"role"`
		Content []Content `json:"content"`
	}

	// Request is the chat payload sent to the model deployment.
	Request struct {
		Messages []Message `json:"messages"`
	}

	// TokenSource issues a bearer token for the model deployment.
	TokenSource interface {
		Token(ctx context.Context) (string, error)
	}

	Deployment interface {
		Chat(ctx context.Context, bearer string, req Request) (json.RawMessage, error)
	}

	Service struct {
		tokens       TokenSource
		deployment   Deployment
		systemPrompt string
		events       EventStore
		logger       core.Logger
	}
)

func NewService(tokens TokenSource, deployment Deployment, systemPrompt string, events EventStore, logger core.Logger) *Service {
	return &Service{
		tokens:       tokens,
		deployment:   deployment,
		systemPrompt: strings.TrimSpace(systemPrompt),
		events:       events,
		logger:       logger,
	}
}

func (svc *Service) newRequest(message string) Request {
	return Request{
		Messages: []Message{
			{
				Role:    "user",
				Content: []Content{{Type: "text", Text: svc.systemPrompt + plannerInstructions + message}},
			},
		},
	}
}

// Ask relays message to the model and returns its raw answer.
// A fresh token is requested for every call; no conversation state is kept.
func (svc *Service) Ask(ctx context.Context, message string) (json.RawMessage, error) {
	message = core.CleanString(message)
	if message == "" {
		return nil, core.NewValidationError(ErrMessageRequired, core.FieldError{Field: "message", Error: ErrMessageRequired.Error()})
	}

	token, err := svc.tokens.Token(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "getting deployment token")
	}
	raw, err := svc.deployment.Chat(ctx, token, svc.newRequest(message))
	if err != nil {
		return nil, errors.Wrap(err, "calling deployment")
	}
	return raw, nil
}

// Plan asks the model and decodes its planner reply.
func (svc *Service) Plan(ctx context.Context, message string) (json.RawMessage, Reply, error) {
	raw, err := svc.Ask(ctx, message)
	if err != nil {
		return nil, Reply{}, err
	}
	reply, err := ParseReply(raw)
	if err != nil {
		svc.logger.Warn("parsing planner reply", err)
		return raw, Reply{}, err
	}
	return raw, reply, nil
}
