package agent

import (
	"context"

	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/resource"
)

// IsSingular decides whether the result is a single datapoint, for which
// charting is pointless. One-shot, no transcript dependency.
func IsSingular(ctx context.Context, c llm.Completer, text string) (bool, error) {
	out, err := llm.Extract[singularityVerdict](ctx, c,
		resource.GetSingularSystem(), singularitySchema,
		[]llm.Turn{{Role: llm.RoleUser, Content: text}})
	if err != nil {
		return false, err
	}
	return out.IsSingular, nil
}
