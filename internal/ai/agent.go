package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

const systemInstruction = `You are "BusinessGenius", a highly intelligent Virtual CFO and Business Coach.
You have access to a full relational database structure (Orders, Products, Inventory, Expenses, Customers).
When answering:
1. Be concise and actionable.
2. Calculate derived metrics if needed (e.g., Average Order Value, Customer LTV).
3. Use the IDs to cross-reference data (e.g., match Inventory items to Product names).
4. Identify specific products or customers by name.
5. Provide "Next Steps" or recommendations based on the financial data.`

const insightsPrompt = `Analyze the provided relational database tables. Identify 3 critical insights (Risks, Opportunities, or Optimizations).
Each insight needs a title, a type (risk, opportunity or optimization), a description and one action item.`

// Analyst answers free-form questions and produces insight lists about a
// business context rendered by BuildContext.
type Analyst interface {
	Ask(ctx context.Context, prompt, contextJSON string) (string, error)
	Insights(ctx context.Context, contextJSON string) ([]Insight, error)
}

// Agent is the OpenAI-backed Analyst.
type Agent struct {
	client *openai.Client
	model  string
}

// NewAgent returns an Agent for model. An empty model selects gpt-4o.
func NewAgent(apiKey, model string, opts ...option.RequestOption) *Agent {
	if model == "" {
		model = string(shared.ChatModelGPT4o)
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Agent{client: &client, model: model}
}

// Ask sends prompt with the business context and returns the model's text answer.
func (a *Agent) Ask(ctx context.Context, prompt, contextJSON string) (string, error) {
	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: param.NewOpt(systemInstruction),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(userInput(prompt, contextJSON)),
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return "", fmt.Errorf("empty response content")
	}
	return content, nil
}

// Insights asks for three insights using strict structured output.
func (a *Agent) Insights(ctx context.Context, contextJSON string) ([]Insight, error) {
	schemaMap, err := insightSchema()
	if err != nil {
		return nil, err
	}

	params := responses.ResponseNewParams{
		Model:        shared.ResponsesModel(a.model),
		Instructions: param.NewOpt(systemInstruction),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(userInput(insightsPrompt, contextJSON)),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "insight_report",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("Three actionable business insights"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	insights, err := ParseInsights(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse insights: %w", err)
	}
	return insights, nil
}

func userInput(prompt, contextJSON string) string {
	return "Business Data Context: " + contextJSON + "\n\n" + prompt
}

// insightSchema reflects InsightReport into the map form the Responses API takes.
func insightSchema() (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(InsightReport{}))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	// $schema and $id fall outside the strict-mode subset.
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")
	return schemaMap, nil
}
