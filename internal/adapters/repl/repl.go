package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"business-dashboard/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive REPL loop.
// It reads commands from reader, dispatches slash commands deterministically,
// and routes natural language input to the analyst. It returns when the user
// exits or reader is exhausted.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	ds, err := svc.Dataset(ctx)
	if err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return
	}

	fmt.Fprintln(out, "Business Dashboard")
	fmt.Fprintf(out, "Dataset: %d orders, %d expenses through %s (seed %d)\n",
		len(ds.Dataset.Orders), len(ds.Dataset.Expenses), ds.Dataset.AsOf, ds.Seed)
	fmt.Fprintln(out, "Ask a question about the business, or use /help for commands.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "dashboard", "d":
			window := ""
			if len(args) > 0 {
				window = args[0]
			}
			result, err := svc.Metrics(ctx, window)
			if err != nil {
				return err
			}
			PrintMetrics(out, result)

		case "products", "p":
			filter := app.ProductFilter{}
			if len(args) > 0 {
				filter.Query = strings.Join(args, " ")
			}
			result, err := svc.ListProducts(ctx, filter)
			if err != nil {
				return err
			}
			PrintProducts(out, result)

		case "customers", "c":
			result, err := svc.ListCustomers(ctx)
			if err != nil {
				return err
			}
			PrintCustomers(out, result)

		case "transactions", "t":
			result, err := svc.ListTransactions(ctx)
			if err != nil {
				return err
			}
			PrintTransactions(out, result)

		case "insights", "i":
			refresh := len(args) > 0 && strings.EqualFold(args[0], "refresh")
			fmt.Fprintln(out, "[AI] Analyzing...")
			result, err := svc.Insights(ctx, refresh)
			if err != nil {
				return err
			}
			PrintInsights(out, result)

		case "regenerate", "r":
			if !confirmRegenerate(reader, out) {
				fmt.Fprintln(out, "Kept the current dataset.")
				return nil
			}
			result, err := svc.Regenerate(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "New dataset %s: %d orders, %d expenses (seed %d).\n",
				result.SnapshotID, len(result.Dataset.Orders), len(result.Dataset.Expenses), result.Seed)

		case "help", "h":
			printHelp(out)

		case "exit", "quit", "e", "q":
			return errExit

		default:
			fmt.Fprintf(out, "Unknown command: /%s  (type /help for all commands)\n", cmd)
		}
		return nil
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, readErr := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if readErr != nil {
				return
			}
			continue
		}

		// Slash prefix → deterministic command dispatcher, no AI invoked.
		if strings.HasPrefix(input, "/") {
			if err := dispatchSlash(input); err != nil {
				if errors.Is(err, errExit) {
					fmt.Fprintln(out, "Goodbye!")
					return
				}
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		} else {
			fmt.Fprintln(out, "[AI] Thinking...")
			result, err := svc.Ask(ctx, app.AskRequest{Prompt: input})
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			} else {
				PrintChat(out, result)
			}
		}

		if readErr != nil {
			return
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, `
Commands:
  /dashboard [7d|30d|all]   KPIs, daily series and low-stock alerts (default 30d)
  /products [search]        Catalog with stock and margin
  /customers                Customers by lifetime value
  /transactions             Orders and expenses, newest first
  /insights [refresh]       Three AI insights for the current dataset
  /regenerate               Replace the dataset with a fresh one
  /help                     This list
  /exit                     Leave

Anything else is sent to the AI analyst as a question.`)
}
