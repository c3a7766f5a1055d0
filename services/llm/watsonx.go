package llmsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/chat"
)

const (
	iamService        = "token service"
	deploymentService = "chat deployment"

	apiKeyGrantType = "urn:ibm:params:oauth:grant-type:apikey"
)

var ErrChatNotConfigured = errors.New("chat deployment not configured")

// IAMTokenSource exchanges an API key for a short-lived bearer token.
type IAMTokenSource struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

var _ chat.TokenSource = (*IAMTokenSource)(nil)

func NewIAMTokenSource(conf *core.Config, httpClient *http.Client) *IAMTokenSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.HTTPClientTimeout}
	}
	return &IAMTokenSource{apiKey: conf.Chat.APIKey, endpoint: conf.Chat.IAMEndpoint, httpClient: httpClient}
}

func (s *IAMTokenSource) Token(ctx context.Context) (string, error) {
	if s.apiKey == "" {
		return "", core.NewUpstreamError(iamService, 0, "", ErrChatNotConfigured)
	}

	form := url.Values{}
	form.Set("grant_type", apiKeyGrantType)
	form.Set("apikey", s.apiKey)
	req, err := http.NewRequest(http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := do(ctx, s.httpClient, iamService, req)
	if err != nil {
		return "", err
	}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err = json.Unmarshal(body, &resp); err != nil {
		return "", core.NewParseError("token response", "invalid JSON", err)
	}
	if resp.AccessToken == "" {
		return "", core.NewParseError("token response", "missing access_token", nil)
	}
	return resp.AccessToken, nil
}

// DeploymentClient posts chat requests to a model deployment.
type DeploymentClient struct {
	url        string
	httpClient *http.Client
}

var _ chat.Deployment = (*DeploymentClient)(nil)

func NewDeploymentClient(conf *core.Config, httpClient *http.Client) *DeploymentClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.HTTPClientTimeout}
	}
	return &DeploymentClient{url: conf.Chat.DeploymentURL, httpClient: httpClient}
}

// Chat returns the deployment's JSON answer untouched.
func (c *DeploymentClient) Chat(ctx context.Context, bearer string, chatReq chat.Request) (json.RawMessage, error) {
	if c.url == "" {
		return nil, core.NewUpstreamError(deploymentService, 0, "", ErrChatNotConfigured)
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, errors.Wrap(err, "encoding request")
	}
	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := do(ctx, c.httpClient, deploymentService, req)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, core.NewParseError("deployment response", "invalid JSON", nil)
	}
	return json.RawMessage(body), nil
}
