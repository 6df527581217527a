package app

import (
	"fmt"
	"strings"
)

// ProductFilter narrows ListProducts. Empty fields match everything.
type ProductFilter struct {
	// Query matches product name or SKU, case-insensitively.
	Query string `json:"q" validate:"max=100"`
	// CategoryID keeps one product category; "all" is the same as empty.
	CategoryID string `json:"category" validate:"max=64"`
}

// AskRequest is a free-form question for the analyst.
type AskRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// Validate trims the prompt and checks it against the struct tags.
func (r *AskRequest) Validate() error {
	r.Prompt = strings.TrimSpace(r.Prompt)
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid chat request: %w", err)
	}
	return nil
}
