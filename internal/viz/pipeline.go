package viz

import (
	"context"
	"fmt"

	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/log"
	"github.com/sqlpilot/sqlpilot/internal/resource"
)

type Pipeline struct {
	completer llm.Completer

	// advise inserts the guidance stage ahead of code generation.
	advise bool
}

func New(c llm.Completer, advise bool) *Pipeline {
	return &Pipeline{
		completer: c,
		advise:    advise,
	}
}

// Run generates and renders a chart for the result text. The terminal
// content is either a PNG data URI or a plain error message; failures
// are never propagated as errors so a broken chart cannot fail the
// query that produced the result.
func (p *Pipeline) Run(ctx context.Context, resultText string) string {
	turns := []llm.Turn{{Role: llm.RoleUser, Content: resultText}}

	if p.advise {
		out, err := llm.Extract[visualizationAdvice](ctx, p.completer,
			resource.GetVizAdviceSystem(), adviceSchema, turns)
		if err != nil {
			return errorText(err)
		}
		turns = append(turns, llm.Turn{Role: llm.RoleAssistant, Content: out.Advice})
	}

	out, err := llm.Extract[visualizationCode](ctx, p.completer,
		resource.GetVizCodeSystem(), codeSchema, turns)
	if err != nil {
		return errorText(err)
	}

	uri, err := Render(out.Code)
	if err != nil {
		log.Errorf("render: %v\n", err)
		return errorText(err)
	}
	return uri
}

func errorText(err error) string {
	return fmt.Sprintf("Error creating visualization: %v", err)
}
