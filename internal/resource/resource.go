package resource

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed generate_query_system.md
var generateQuerySystem string

//go:embed examine_query_system.md
var examineQuerySystem string

//go:embed optimize_query_system.md
var optimizeQuerySystem string

//go:embed final_answer_system.md
var finalAnswerSystem string

//go:embed singular_system.md
var singularSystem string

//go:embed viz_advice_system.md
var vizAdviceSystem string

//go:embed viz_code_system.md
var vizCodeSystem string

func GetGenerateQuerySystem() string {
	return generateQuerySystem
}

func GetExamineQuerySystem() string {
	return examineQuerySystem
}

func GetOptimizeQuerySystem(rowLimit int) (string, error) {
	return apply(optimizeQuerySystem, map[string]any{
		"limit": rowLimit,
	})
}

func GetFinalAnswerSystem() string {
	return finalAnswerSystem
}

func GetSingularSystem() string {
	return singularSystem
}

func GetVizAdviceSystem() string {
	return vizAdviceSystem
}

func GetVizCodeSystem() string {
	return vizCodeSystem
}

func apply(tpl string, data any) (string, error) {
	t, err := template.New("resource").Parse(tpl)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	if err := t.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}
