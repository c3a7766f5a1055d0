package chat_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/chat"
	"github.com/trezcool/edutrack/core/user"
	inmemdb "github.com/trezcool/edutrack/storage/database/inmem"
	"github.com/trezcool/edutrack/tests"
)

type mockTokens struct {
	mock.Mock
}

func (m *mockTokens) Token(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type mockDeployment struct {
	mock.Mock
}

func (m *mockDeployment) Chat(ctx context.Context, bearer string, req chat.Request) (json.RawMessage, error) {
	args := m.Called(ctx, bearer, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

const plannerContent = "```json\n{\"assistant_message\":\"Here is your plan\",\"explain\":\"Spread the work\"," +
	"\"DATES\":{\"2024-03-06\":[{\"title\":\"Read chapter 2\",\"description\":\"Biology\",\"original_deadline\":\"2024-03-08\"}]," +
	"\"2024-03-05\":[{\"title\":\"Read chapter 1\",\"description\":\"Biology\",\"original_deadline\":\"2024-03-08\"}]}}\n```"

func completion(t *testing.T, content string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"id": "chat-1",
		"choices": []interface{}{
			map[string]interface{}{"index": 0, "message": map[string]interface{}{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return raw
}

func newService(tokens chat.TokenSource, dep chat.Deployment) (*chat.Service, user.Repository) {
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	validate, _ := testutil.NewValidator()
	return chat.NewService(tokens, dep, "  SYSTEM RULES  ", user.NewService(repo, validate), new(testutil.Logger)), repo
}

func TestService_Ask(t *testing.T) {
	ctx := context.Background()
	tokens := new(mockTokens)
	tokens.On("Token", ctx).Return("bearer-1", nil).Once()
	tokens.On("Token", ctx).Return("bearer-2", nil).Once()

	raw := completion(t, "hello")
	dep := new(mockDeployment)
	dep.On("Chat", ctx, mock.Anything, mock.MatchedBy(func(req chat.Request) bool {
		return len(req.Messages) == 1 &&
			req.Messages[0].Role == "user" &&
			req.Messages[0].Content[0].Type == "text" &&
			req.Messages[0].Content[0].Text == "SYSTEM RULES You are an educational scheduling assistant. "+
				"Plan tasks strictly in JSON format according to the rules. Input: plan my week"
	})).Return(raw, nil)

	svc, _ := newService(tokens, dep)
	got, err := svc.Ask(ctx, "  plan my week ")
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))

	_, err = svc.Ask(ctx, "plan my week")
	require.NoError(t, err)

	// a fresh token per request
	dep.AssertCalled(t, "Chat", ctx, "bearer-1", mock.Anything)
	dep.AssertCalled(t, "Chat", ctx, "bearer-2", mock.Anything)
	tokens.AssertNumberOfCalls(t, "Token", 2)
}

func TestService_Ask_errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty message", func(t *testing.T) {
		tokens := new(mockTokens)
		svc, _ := newService(tokens, new(mockDeployment))
		_, err := svc.Ask(ctx, "   ")
		require.IsType(t, &core.ValidationError{}, err)
		assert.EqualError(t, err, "Message is required")
		tokens.AssertNotCalled(t, "Token", mock.Anything)
	})

	t.Run("token failure", func(t *testing.T) {
		tokens := new(mockTokens)
		tokens.On("Token", ctx).Return("", core.NewUpstreamError("iam", 400, "bad key", nil))
		svc, _ := newService(tokens, new(mockDeployment))
		_, err := svc.Ask(ctx, "hi")
		var upErr *core.UpstreamError
		require.True(t, errors.As(err, &upErr))
		assert.Equal(t, "iam", upErr.Service)
	})

	t.Run("deployment failure", func(t *testing.T) {
		tokens := new(mockTokens)
		tokens.On("Token", ctx).Return("bearer", nil)
		dep := new(mockDeployment)
		dep.On("Chat", ctx, "bearer", mock.Anything).Return(nil, core.NewUpstreamError("deployment", 500, "", nil))
		svc, _ := newService(tokens, dep)
		_, err := svc.Ask(ctx, "hi")
		assert.EqualError(t, err, "calling deployment: deployment: unexpected status 500")
	})
}

func TestService_Plan(t *testing.T) {
	ctx := context.Background()
	tokens := new(mockTokens)
	tokens.On("Token", ctx).Return("bearer", nil)
	dep := new(mockDeployment)
	dep.On("Chat", ctx, "bearer", mock.Anything).Return(completion(t, plannerContent), nil)

	svc, _ := newService(tokens, dep)
	raw, reply, err := svc.Plan(ctx, "help me study biology")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, "Here is your plan", reply.AssistantMessage)
	assert.Equal(t, "Spread the work", reply.Explain)
	require.Len(t, reply.Dates["2024-03-05"], 1)
	assert.Equal(t, "2024-03-08", reply.Dates["2024-03-05"][0].OriginalDeadline)

	actions := reply.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, chat.Action{Op: chat.OpAdd, Title: "Read chapter 1", Description: "Biology", Date: "2024-03-05"}, actions[0])
	assert.Equal(t, "2024-03-06", actions[1].Date)
}

func TestParseReply_errors(t *testing.T) {
	tests := []struct {
		name string
		raw  json.RawMessage
	}{
		{name: "not json", raw: json.RawMessage(`oops`)},
		{name: "no choices", raw: json.RawMessage(`{"choices":[]}`)},
		{name: "no object", raw: completion(t, "I would rather not.")},
		{name: "bad object", raw: completion(t, `{"assistant_message": }`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := chat.ParseReply(tt.raw)
			var pErr *core.ParseError
			assert.True(t, errors.As(err, &pErr), "got %v", err)
		})
	}
}

func TestService_Apply(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(new(mockTokens), new(mockDeployment))
	testutil.CreateUser(t, repo, "g-1", "Ada", "ada@test.cd")

	results, err := svc.Apply(ctx, "g-1", []chat.Action{
		{Op: chat.OpAdd, Title: "Read chapter 1", Date: "2024-03-05"},
		{Op: chat.OpAdd, Title: "Read chapter 1", Date: "2024-03-05"},
		{Op: chat.OpAdd, Title: "x", Date: "2024-03-05"},
		{Op: chat.OpDelete, Title: "Read chapter 1", Date: "2024-03-05"},
		{Op: "rename", Title: "Read chapter 1"},
	})
	require.NoError(t, err)
	require.Len(t, results, 5)

	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Event)
	assert.Equal(t, "Read chapter 1", results[0].Event.Title)
	assert.True(t, results[1].Success)

	assert.False(t, results[2].Success)
	assert.Equal(t, "title failed on min", results[2].Error)

	assert.True(t, results[3].Success)
	assert.Equal(t, 2, results[3].Removed)

	assert.False(t, results[4].Success)
	assert.Equal(t, `unknown op "rename"`, results[4].Error)

	events, err := repo.GetUserByGoogleID(ctx, "g-1")
	require.NoError(t, err)
	assert.Empty(t, events.Events)
}

func TestService_Apply_unknownUser(t *testing.T) {
	svc, _ := newService(new(mockTokens), new(mockDeployment))
	_, err := svc.Apply(context.Background(), "nobody", []chat.Action{{Op: chat.OpAdd, Title: "Read", Date: "2024-03-05"}})
	assert.Equal(t, user.ErrNotFound, err)
}
