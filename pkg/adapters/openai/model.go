// Package openai adapts the OpenAI chat completions API to the
// ports.LanguageModel seam. One Complete call carries the node prompt, the
// per-node transcript, the extraction schema as a structured-output response
// format, and the transition capabilities as tools, so the engine gets reply,
// extracted fields, and invoked transitions in a single round-trip.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/ports"
)

const defaultModel = openai.ChatModelGPT4oMini

// Model implements ports.LanguageModel against an OpenAI-compatible endpoint.
type Model struct {
	client openai.Client
	name   shared.ChatModel

	temperature *float64
}

// Option configures the Model.
type Option func(*options)

type options struct {
	name        string
	temperature *float64
	apiKey      string
	baseURL     string
	clientOpts  []openaiopt.RequestOption
}

// WithModel sets the model name, e.g. "gpt-4o".
func WithModel(name string) Option {
	return func(o *options) { o.name = name }
}

// WithAPIKey sets the API key explicitly instead of the environment.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = url }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = &t }
}

// WithClientOptions passes raw request options through to the SDK client.
func WithClientOptions(opts ...openaiopt.RequestOption) Option {
	return func(o *options) { o.clientOpts = append(o.clientOpts, opts...) }
}

// New creates a Model. Without options it reads OPENAI_API_KEY from the
// environment, as the SDK does by default.
func New(opts ...Option) *Model {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var clientOpts []openaiopt.RequestOption
	if o.apiKey != "" {
		clientOpts = append(clientOpts, openaiopt.WithAPIKey(o.apiKey))
	}
	if o.baseURL != "" {
		clientOpts = append(clientOpts, openaiopt.WithBaseURL(o.baseURL))
	}
	clientOpts = append(clientOpts, o.clientOpts...)

	name := shared.ChatModel(o.name)
	if name == "" {
		name = defaultModel
	}

	return &Model{
		client:      openai.NewClient(clientOpts...),
		name:        name,
		temperature: o.temperature,
	}
}

// Complete runs one chat completion and maps the choice back onto the port
// result.
func (m *Model) Complete(ctx context.Context, req *ports.CompletionRequest) (*ports.CompletionResult, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.name,
		Messages: buildMessages(req),
		Tools:    buildTools(req.Capabilities),
	}
	if m.temperature != nil {
		params.Temperature = openai.Float(*m.temperature)
	}
	if len(req.Extract) > 0 {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "turn",
					Description: openai.String("The spoken reply plus any confidently inferred fields."),
					Schema:      extractionSchema(req.Extract),
					Strict:      openai.Bool(false),
				},
			},
		}
	}

	completion, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}
	choice := completion.Choices[0]

	reply, extracted := parseContent(choice.Message.Content, len(req.Extract) > 0)

	result := &ports.CompletionResult{
		Reply:     reply,
		Extracted: extracted,
	}
	for _, call := range choice.Message.ToolCalls {
		if call.Function.Name != "" {
			result.Invoked = append(result.Invoked, call.Function.Name)
		}
	}
	return result, nil
}

func buildMessages(req *ports.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.History)+1)
	msgs = append(msgs, openai.SystemMessage(req.Instructions))
	for _, h := range req.History {
		switch h.Role {
		case ports.RoleAssistant:
			msgs = append(msgs, openai.AssistantMessage(h.Content))
		case ports.RoleSystem:
			msgs = append(msgs, openai.SystemMessage(h.Content))
		default:
			msgs = append(msgs, openai.UserMessage(h.Content))
		}
	}
	return msgs
}

// buildTools exposes each transition capability as a zero-argument function
// tool. The model signals a transition by calling the tool; arguments carry
// no information, so the schema is an empty object.
func buildTools(caps []ports.Capability) []openai.ChatCompletionToolParam {
	if len(caps) == 0 {
		return nil
	}
	tools := make([]openai.ChatCompletionToolParam, 0, len(caps))
	for _, c := range caps {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        c.Name,
				Description: openai.String(c.Description),
				Parameters: shared.FunctionParameters{
					"type":                 "object",
					"properties":           map[string]any{},
					"additionalProperties": false,
				},
			},
		})
	}
	return tools
}

// extractionSchema builds the response schema: a required reply string plus
// one optional property per extraction spec. Only reply is required so the
// model omits fields it cannot infer instead of guessing.
func extractionSchema(specs []domain.ExtractionSpec) map[string]any {
	properties := map[string]any{
		"reply": map[string]any{
			"type":        "string",
			"description": "What to say to the caller next.",
		},
	}
	for _, spec := range specs {
		properties[spec.Name] = map[string]any{
			"type":        jsonType(spec.Type),
			"description": spec.Description,
		}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             []string{"reply"},
		"additionalProperties": false,
	}
}

func jsonType(varType string) string {
	switch varType {
	case domain.VarBoolean:
		return "boolean"
	case domain.VarNumber:
		return "number"
	default:
		return "string"
	}
}

// parseContent splits a structured-output payload into the spoken reply and
// the extracted fields. Plain text passes through untouched; so does content
// that fails to parse as the expected object, which guards against models
// that ignore the response format.
func parseContent(content string, structured bool) (string, map[string]any) {
	if !structured {
		return content, nil
	}
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return content, nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return content, nil
	}
	reply, _ := payload["reply"].(string)
	delete(payload, "reply")
	if len(payload) == 0 {
		payload = nil
	}
	return reply, payload
}
