package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/sqlpilot/sqlpilot/internal/log"
)

// https://platform.openai.com/docs/models
const defaultModel = "gpt-4o"

type Config struct {
	ApiKey  string
	BaseUrl string
	Model   string
}

type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(cfg *Config) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.ApiKey),
	}
	if cfg.BaseUrl != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseUrl))
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (r *OpenAI) Complete(ctx context.Context, req *Request) (*Response, error) {
	log.Debugf(">OPENAI:\n req: %+v\n", req)

	params := openai.ChatCompletionNewParams{
		Seed:        openai.Int(0),
		Temperature: openai.Float(0),
		Model:       r.model,
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, v := range req.Messages {
		switch v.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(v.Content))
		default:
			messages = append(messages, openai.UserMessage(v.Content))
		}
	}
	params.Messages = messages

	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   req.Schema.Name,
					Schema: req.Schema.Parameters,
					Strict: openai.Bool(true),
				},
			},
		}
	}

	completion, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Errorf("openai: %v\n", err)
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	resp := &Response{
		Content: completion.Choices[0].Message.Content,
	}
	log.Debugf(">OPENAI:\n resp: %+v\n", resp)
	return resp, nil
}
