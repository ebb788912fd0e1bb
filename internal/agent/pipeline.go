// Package agent implements the multi-step query pipeline: a fixed
// sequence of stages over an append-only transcript, ending with a
// natural-language answer and the SQL that produced it.
package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/log"
	"github.com/sqlpilot/sqlpilot/internal/resource"
)

// TabularSentinel is appended to the question exactly once when the
// caller requests a markdown-table answer.
const TabularSentinel = "Present the answer as a markdown table."

const defaultRowLimit = 10

type Stage int

const (
	StageListTables Stage = iota
	StageDescribeSchema
	StageGenerateQuery
	StageExamineQuery
	StageOptimizeQuery
	StageExecuteQuery
	StageFinalAnswer
)

var stageNames = map[Stage]string{
	StageListTables:     "list_tables",
	StageDescribeSchema: "describe_schema",
	StageGenerateQuery:  "generate_query",
	StageExamineQuery:   "examine_query",
	StageOptimizeQuery:  "optimize_query",
	StageExecuteQuery:   "execute_query",
	StageFinalAnswer:    "final_answer",
}

func (s Stage) String() string {
	return stageNames[s]
}

// Options selects the pipeline variant. The baseline runs five stages;
// Examine and Optimize each add one.
type Options struct {
	Examine  bool
	Optimize bool
	Tabular  bool
}

type Result struct {
	Answer  string
	SQLUsed string
}

type Pipeline struct {
	completer llm.Completer
	database  *db.Database
	opts      Options
}

func New(c llm.Completer, d *db.Database, opts Options) *Pipeline {
	return &Pipeline{
		completer: c,
		database:  d,
		opts:      opts,
	}
}

func (p *Pipeline) stages() []Stage {
	stages := []Stage{StageListTables, StageDescribeSchema, StageGenerateQuery}
	if p.opts.Examine {
		stages = append(stages, StageExamineQuery)
	}
	if p.opts.Optimize {
		stages = append(stages, StageOptimizeQuery)
	}
	return append(stages, StageExecuteQuery, StageFinalAnswer)
}

// Run executes the stages in order and returns the final answer together
// with the executed SQL. The answer is the last transcript turn and the
// SQL is the third-from-last; every variant preserves this layout.
func (p *Pipeline) Run(ctx context.Context, question string) (*Result, error) {
	transcript, err := p.run(ctx, question)
	if err != nil {
		return nil, err
	}

	if transcript.Len() < 4 {
		return nil, fmt.Errorf("transcript too short: %d turns", transcript.Len())
	}
	return &Result{
		Answer:  transcript.FromEnd(0),
		SQLUsed: transcript.FromEnd(2),
	}, nil
}

func (p *Pipeline) run(ctx context.Context, question string) (*Transcript, error) {
	runID := uuid.NewString()[:8]

	if p.opts.Tabular {
		question = question + " " + TabularSentinel
	}
	transcript := NewTranscript(question)

	for _, stage := range p.stages() {
		log.Infof("[%s] stage %s\n", runID, stage)
		if err := p.transition(ctx, stage, transcript); err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage, err)
		}
	}
	return transcript, nil
}

func (p *Pipeline) transition(ctx context.Context, stage Stage, t *Transcript) error {
	switch stage {
	case StageListTables:
		return p.listTables(ctx, t)
	case StageDescribeSchema:
		return p.describeSchema(ctx, t)
	case StageGenerateQuery:
		return p.generateQuery(ctx, t)
	case StageExamineQuery:
		return p.examineQuery(ctx, t)
	case StageOptimizeQuery:
		return p.optimizeQuery(ctx, t)
	case StageExecuteQuery:
		return p.executeQuery(ctx, t)
	case StageFinalAnswer:
		return p.finalAnswer(ctx, t)
	}
	return fmt.Errorf("unknown stage %d", stage)
}

func (p *Pipeline) listTables(ctx context.Context, t *Transcript) error {
	tables, err := p.database.ListTables(ctx)
	if err != nil {
		return err
	}
	t.Append(llm.RoleAssistant, strings.Join(tables, ", "))
	return nil
}

func (p *Pipeline) describeSchema(ctx context.Context, t *Transcript) error {
	schema, err := p.database.DescribeSchema(ctx, t.FromEnd(0))
	if err != nil {
		return err
	}
	t.Append(llm.RoleAssistant, schema)
	return nil
}

func (p *Pipeline) generateQuery(ctx context.Context, t *Transcript) error {
	out, err := llm.Extract[generatedQuery](ctx, p.completer,
		resource.GetGenerateQuerySystem(), generatedQuerySchema, t.Turns())
	if err != nil {
		return err
	}
	t.Append(llm.RoleAssistant, out.Query)
	return nil
}

// examineQuery classifies the generated query but appends no turn. The
// verdict is observed and logged, not branched on; a repair loop back to
// generateQuery would hang off this verdict.
func (p *Pipeline) examineQuery(ctx context.Context, t *Transcript) error {
	out, err := llm.Extract[queryVerdict](ctx, p.completer,
		resource.GetExamineQuerySystem(), queryVerdictSchema, t.Turns())
	if err != nil {
		return err
	}
	switch out.Verdict {
	case VerdictRewrite, VerdictExtend, VerdictCorrect:
		log.Infof("examine verdict: %s\n", out.Verdict)
		return nil
	}
	return &llm.StructuredOutputError{
		Name: queryVerdictSchema.Name,
		Err:  fmt.Errorf("unknown verdict %q", out.Verdict),
	}
}

func (p *Pipeline) optimizeQuery(ctx context.Context, t *Transcript) error {
	system, err := resource.GetOptimizeQuerySystem(defaultRowLimit)
	if err != nil {
		return err
	}
	out, err := llm.Extract[optimizedQuery](ctx, p.completer,
		system, optimizedQuerySchema, t.Turns())
	if err != nil {
		return err
	}
	t.Append(llm.RoleAssistant, out.Query)
	return nil
}

// executeQuery runs the most recent turn as literal SQL. Driver errors
// come back as text and land in the transcript like any other result.
func (p *Pipeline) executeQuery(ctx context.Context, t *Transcript) error {
	result := p.database.RunNoThrow(ctx, t.FromEnd(0))
	t.Append(llm.RoleAssistant, result)
	return nil
}

func (p *Pipeline) finalAnswer(ctx context.Context, t *Transcript) error {
	out, err := llm.Extract[finalAnswer](ctx, p.completer,
		resource.GetFinalAnswerSystem(), finalAnswerSchema, t.Turns())
	if err != nil {
		return err
	}
	t.Append(llm.RoleAssistant, out.Answer)
	return nil
}
