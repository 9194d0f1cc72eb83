package agents

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed prompts/*.md
var embedded embed.FS

const (
	parsingPromptFile   = "parsing.md"
	questionsPromptFile = "questions.md"
	scoringPromptFile   = "scoring.md"
)

// Prompts are the system instructions of the three stages.
type Prompts struct {
	Parsing   string
	Questions string
	Scoring   string
}

// DefaultPrompts returns the prompts compiled into the binary.
func DefaultPrompts() Prompts {
	return Prompts{
		Parsing:   mustEmbedded(parsingPromptFile),
		Questions: mustEmbedded(questionsPromptFile),
		Scoring:   mustEmbedded(scoringPromptFile),
	}
}

// LoadPrompts reads prompt overrides from dir. Files missing from dir keep
// the compiled-in prompt; an empty dir returns the defaults.
func LoadPrompts(dir string) (Prompts, error) {
	prompts := DefaultPrompts()

	dir = strings.TrimSpace(dir)
	if dir == "" {
		return prompts, nil
	}

	overrides := []struct {
		file   string
		target *string
	}{
		{file: parsingPromptFile, target: &prompts.Parsing},
		{file: questionsPromptFile, target: &prompts.Questions},
		{file: scoringPromptFile, target: &prompts.Scoring},
	}

	for _, o := range overrides {
		data, err := os.ReadFile(filepath.Join(dir, o.file))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Prompts{}, fmt.Errorf("read prompt %s: %w", o.file, err)
		}

		text := strings.TrimSpace(string(data))
		if text == "" {
			return Prompts{}, fmt.Errorf("prompt %s is empty", filepath.Join(dir, o.file))
		}
		*o.target = text
	}

	return prompts, nil
}

func mustEmbedded(name string) string {
	data, err := embedded.ReadFile("prompts/" + name)
	if err != nil {
		panic(fmt.Sprintf("embedded prompt %s: %v", name, err))
	}
	return strings.TrimSpace(string(data))
}
