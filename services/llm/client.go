// Package llmsvc holds the HTTP clients of the language model APIs used by the news and chat features.
package llmsvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
)

const maxErrorBody = 2048

// do sends req and returns the response body of a 2xx answer.
// Any other outcome is returned as a *core.UpstreamError.
func do(ctx context.Context, client *http.Client, service string, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, core.NewUpstreamError(service, 0, "", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewUpstreamError(service, resp.StatusCode, "", errors.Wrap(err, "reading response"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.NewUpstreamError(service, resp.StatusCode, errorMessage(body), nil)
	}
	return body, nil
}

// errorMessage extracts a readable message from an error payload.
func errorMessage(body []byte) string {
	var payload struct {
		Error interface{} `json:"error"`
		// IAM style
		ErrorMessage string `json:"errorMessage"`
		Message      string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch e := payload.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		case map[string]interface{}:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
		if payload.ErrorMessage != "" {
			return payload.ErrorMessage
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
