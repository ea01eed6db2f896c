package ai

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"

	"voice-ai-go/internal/models"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptFile struct {
	SystemPrompts map[string]string `yaml:"system_prompts"`
}

// Prompts maps each chat mode to its fixed system prompt.
type Prompts map[models.ChatMode]string

// LoadPrompts parses the embedded prompt table and checks that every chat
// mode has a prompt.
func LoadPrompts() (Prompts, error) {
	return parsePrompts(promptsYAML)
}

func parsePrompts(data []byte) (Prompts, error) {
	var f promptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing prompt yaml: %w", err)
	}

	p := Prompts{}
	for _, mode := range models.ChatModes {
		text, ok := f.SystemPrompts[string(mode)]
		if !ok || text == "" {
			return nil, fmt.Errorf("missing system prompt for mode %q", mode)
		}
		p[mode] = text
	}
	return p, nil
}

func (p Prompts) For(mode models.ChatMode) (string, bool) {
	s, ok := p[mode]
	return s, ok
}
