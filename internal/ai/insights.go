package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// InsightType classifies an insight.
type InsightType string

const (
	InsightRisk         InsightType = "risk"
	InsightOpportunity  InsightType = "opportunity"
	InsightOptimization InsightType = "optimization"
)

// Insight is one actionable finding about the business.
type Insight struct {
	Title       string      `json:"title" jsonschema:"description=Short headline for the finding"`
	Type        InsightType `json:"type" jsonschema:"enum=risk,enum=opportunity,enum=optimization"`
	Description string      `json:"description" jsonschema:"description=What the data shows, naming products or customers where relevant"`
	ActionItem  string      `json:"action_item" jsonschema:"description=One concrete next step"`
}

// InsightReport is the structured-output envelope requested from the model.
type InsightReport struct {
	Insights []Insight `json:"insights"`
}

// ErrNoInsights is returned by ParseInsights when the payload holds no usable insight.
var ErrNoInsights = errors.New("no insights in model output")

// rawInsight accepts both snake_case and camelCase action keys.
type rawInsight struct {
	Title           string `json:"title"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	ActionItem      string `json:"action_item"`
	ActionItemCamel string `json:"actionItem"`
}

// ParseInsights decodes model output into insights. It strips Markdown code
// fences and accepts either a bare JSON array or an {"insights": [...]} object.
func ParseInsights(raw string) ([]Insight, error) {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrNoInsights
	}

	var items []rawInsight
	if strings.HasPrefix(s, "[") {
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return nil, fmt.Errorf("decode insight array: %w", err)
		}
	} else {
		var report struct {
			Insights []rawInsight `json:"insights"`
		}
		if err := json.Unmarshal([]byte(s), &report); err != nil {
			return nil, fmt.Errorf("decode insight report: %w", err)
		}
		items = report.Insights
	}

	out := make([]Insight, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		action := it.ActionItem
		if action == "" {
			action = it.ActionItemCamel
		}
		out = append(out, Insight{
			Title:       strings.TrimSpace(it.Title),
			Type:        InsightType(strings.ToLower(strings.TrimSpace(it.Type))),
			Description: strings.TrimSpace(it.Description),
			ActionItem:  strings.TrimSpace(action),
		})
	}
	if len(out) == 0 {
		return nil, ErrNoInsights
	}
	return out, nil
}

// FallbackInsights is the canned list shown when the model cannot be reached
// or its output cannot be parsed. Each call returns a fresh slice.
func FallbackInsights() []Insight {
	return []Insight{
		{
			Title:       "High-Margin Product Alert",
			Type:        InsightOpportunity,
			Description: "Top-tier item has a 61% margin and high sales velocity.",
			ActionItem:  "Feature this product in next week's email campaign.",
		},
		{
			Title:       "Inventory Stockout Risk",
			Type:        InsightRisk,
			Description: "Key product is below reorder point.",
			ActionItem:  "Create Purchase Order immediately.",
		},
		{
			Title:       "High Expense Detected",
			Type:        InsightOptimization,
			Description: "Rent & Utilities account for 60% of total expenses this period.",
			ActionItem:  "Review lease terms or sublet unused space.",
		},
	}
}
