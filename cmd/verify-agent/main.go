package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"business-dashboard/internal/ai"
	"business-dashboard/internal/config"
	"business-dashboard/internal/core"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // Load .env if present

	cfg, err := config.Load("verify-agent")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.AIEnabled() {
		log.Fatal("OPENAI_API_KEY not set")
	}

	agent := ai.NewAgent(cfg.AI.APIKey, cfg.AI.Model)
	ctx := context.Background()

	seed := uint64(1)
	if cfg.Generator.Seed != nil {
		seed = *cfg.Generator.Seed
	}
	ds := core.GenerateDataset(core.NewSeededRand(seed), core.Today())
	contextJSON, err := ai.BuildContext(ds)
	if err != nil {
		log.Fatalf("context: %v", err)
	}
	fmt.Printf("MODEL: %s  SEED: %d  CONTEXT: %d bytes\n", cfg.AI.Model, seed, len(contextJSON))

	question := "Which product should I promote this week, and why?"
	fmt.Printf("\nASKING: %s\n", question)
	reply, err := agent.Ask(ctx, question, contextJSON)
	if err != nil {
		log.Fatalf("Ask error: %v", err)
	}
	fmt.Printf("\n--- REPLY ---\n%s\n", reply)

	insights, err := agent.Insights(ctx, contextJSON)
	if err != nil {
		log.Fatalf("Insights error: %v", err)
	}
	fmt.Printf("\n--- INSIGHTS (%d) ---\n", len(insights))
	for _, in := range insights {
		fmt.Printf("- [%s] %s\n  %s\n  Action: %s\n", in.Type, in.Title, in.Description, in.ActionItem)
	}

	if len(insights) != 3 {
		fmt.Fprintf(os.Stderr, "warning: expected 3 insights, got %d\n", len(insights))
	}
}
