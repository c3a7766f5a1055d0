// Package assets embeds the static files shipped with the binaries.
package assets

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
)

//go:embed system_prompt.txt
var defaultSystemPrompt string

// SystemPrompt returns the planner prompt stored at path, or the embedded one when path is empty.
func SystemPrompt(path string) (string, error) {
	if path == "" {
		return defaultSystemPrompt, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading system prompt %s", path)
	}
	return string(data), nil
}
