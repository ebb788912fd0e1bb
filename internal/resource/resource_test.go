package resource

import (
	"strings"
	"testing"
)

func TestGetOptimizeQuerySystem(t *testing.T) {
	out, err := GetOptimizeQuerySystem(10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out, "cap the result at 10 rows") {
		t.Errorf("row limit not applied:\n%s", out)
	}
	if strings.Contains(out, "{{") {
		t.Errorf("unexpanded template:\n%s", out)
	}
}

func TestSystemPromptsNotEmpty(t *testing.T) {
	prompts := map[string]string{
		"generate_query": GetGenerateQuerySystem(),
		"examine_query":  GetExamineQuerySystem(),
		"final_answer":   GetFinalAnswerSystem(),
		"singular":       GetSingularSystem(),
		"viz_advice":     GetVizAdviceSystem(),
		"viz_code":       GetVizCodeSystem(),
	}
	for name, p := range prompts {
		if strings.TrimSpace(p) == "" {
			t.Errorf("%s: empty prompt", name)
		}
	}
}
