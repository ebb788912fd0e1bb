package agent

import "github.com/sqlpilot/sqlpilot/internal/llm"

// Transcript is the ordered, append-only conversation a pipeline run
// accumulates. It is owned by exactly one run; turns are never removed
// or reordered.
type Transcript struct {
	turns []llm.Turn
}

func NewTranscript(question string) *Transcript {
	t := &Transcript{}
	t.Append(llm.RoleUser, question)
	return t
}

func (r *Transcript) Append(role, content string) {
	r.turns = append(r.turns, llm.Turn{Role: role, Content: content})
}

func (r *Transcript) Turns() []llm.Turn {
	return r.turns
}

func (r *Transcript) Len() int {
	return len(r.turns)
}

// FromEnd returns the content of the n-th turn counting back from the
// last (0 is the last turn).
func (r *Transcript) FromEnd(n int) string {
	return r.turns[len(r.turns)-1-n].Content
}
