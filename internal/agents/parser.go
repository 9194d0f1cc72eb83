package agents

import (
	"context"

	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/normalize"
)

// Parser extracts a profile from raw resume text.
type Parser struct {
	agent
}

func NewParser(generator gateway.Generator, system string, opts Options) *Parser {
	return &Parser{agent: newAgent(generator, StageParsing, system, opts)}
}

// Parse returns the candidate profile found in item. It returns
// candidate.DefaultProfile when nothing usable came back.
func (p *Parser) Parse(ctx context.Context, item candidate.ResumeItem) candidate.Profile {
	value, ok := p.call(ctx, "Resume to parse:\n\n"+item.Text, normalize.Object, item.Filename)
	if !ok {
		return candidate.DefaultProfile()
	}

	return candidate.ProfileFromMap(value.(map[string]any))
}
