package agent

import "github.com/sqlpilot/sqlpilot/internal/llm"

// Structured extraction contracts. A stage never accepts free-form text
// where one of these is declared.

type generatedQuery struct {
	Query string `json:"query"`
}

type optimizedQuery struct {
	Query string `json:"query"`
}

type queryVerdict struct {
	Verdict string `json:"verdict"`
}

const (
	VerdictRewrite = "Rewrite"
	VerdictExtend  = "Extend"
	VerdictCorrect = "Correct"
)

type finalAnswer struct {
	Answer string `json:"answer"`
}

type singularityVerdict struct {
	IsSingular bool `json:"is_singular"`
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

var generatedQuerySchema = &llm.Schema{
	Name: "generated_query",
	Parameters: objectSchema(map[string]any{
		"query": map[string]string{
			"type":        "string",
			"description": "The SQL query to execute",
		},
	}, []string{"query"}),
}

var optimizedQuerySchema = &llm.Schema{
	Name: "optimized_query",
	Parameters: objectSchema(map[string]any{
		"query": map[string]string{
			"type":        "string",
			"description": "The corrected and optimized SQL query",
		},
	}, []string{"query"}),
}

var queryVerdictSchema = &llm.Schema{
	Name: "query_verdict",
	Parameters: objectSchema(map[string]any{
		"verdict": map[string]any{
			"type":        "string",
			"description": "The result of examining the query",
			"enum":        []string{VerdictRewrite, VerdictExtend, VerdictCorrect},
		},
	}, []string{"verdict"}),
}

var finalAnswerSchema = &llm.Schema{
	Name: "final_answer",
	Parameters: objectSchema(map[string]any{
		"answer": map[string]string{
			"type":        "string",
			"description": "The final answer to the user",
		},
	}, []string{"answer"}),
}

var singularitySchema = &llm.Schema{
	Name: "singularity_verdict",
	Parameters: objectSchema(map[string]any{
		"is_singular": map[string]string{
			"type":        "boolean",
			"description": "Whether the result is a single datapoint",
		},
	}, []string{"is_singular"}),
}
