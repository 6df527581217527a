package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"business-dashboard/internal/adapters/repl"
	"business-dashboard/internal/app"
	"business-dashboard/internal/auth"
)

// ErrUsage is returned when a command is missing arguments or unknown.
var ErrUsage = errors.New("usage")

const usage = `Available: generate [seed], dashboard [7d|30d|all], products [search], customers,
           transactions, ask "<question>", insights [refresh], token <subject> [role] [ttl], export`

// generateCommands are the names Run accepts for the generate command.
var generateCommands = []string{"generate", "gen", "g"}

// SeedFromArgs returns the seed of "generate <seed>", or nil for any other
// command line. The caller passes it to app.WithSeed before the first
// Regenerate so the printed dataset is the one the seed reproduces.
func SeedFromArgs(args []string) (*uint64, error) {
	if len(args) < 2 || !slices.Contains(generateCommands, args[0]) {
		return nil, nil
	}
	seed, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: seed must be a non-negative integer: %v", ErrUsage, err)
	}
	return &seed, nil
}

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, tokens *auth.Tokens, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command\n%s", ErrUsage, usage)
	}

	switch args[0] {
	case "generate", "gen", "g":
		if _, err := SeedFromArgs(args); err != nil {
			return err
		}
		result, err := svc.Dataset(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)

	case "dashboard", "dash", "d":
		window := ""
		if len(args) > 1 {
			window = args[1]
		}
		result, err := svc.Metrics(ctx, window)
		if err != nil {
			return err
		}
		repl.PrintMetrics(out, result)

	case "products", "p":
		filter := app.ProductFilter{}
		if len(args) > 1 {
			filter.Query = strings.Join(args[1:], " ")
		}
		result, err := svc.ListProducts(ctx, filter)
		if err != nil {
			return err
		}
		repl.PrintProducts(out, result)

	case "customers", "c":
		result, err := svc.ListCustomers(ctx)
		if err != nil {
			return err
		}
		repl.PrintCustomers(out, result)

	case "transactions", "t":
		result, err := svc.ListTransactions(ctx)
		if err != nil {
			return err
		}
		repl.PrintTransactions(out, result)

	case "ask", "a":
		if len(args) < 2 {
			return fmt.Errorf("%w: app ask \"<question>\"", ErrUsage)
		}
		result, err := svc.Ask(ctx, app.AskRequest{Prompt: strings.Join(args[1:], " ")})
		if err != nil {
			return err
		}
		repl.PrintChat(out, result)

	case "insights", "i":
		refresh := len(args) > 1 && strings.EqualFold(args[1], "refresh")
		result, err := svc.Insights(ctx, refresh)
		if err != nil {
			return err
		}
		repl.PrintInsights(out, result)

	case "token":
		if len(args) < 2 {
			return fmt.Errorf("%w: app token <subject> [role] [ttl]", ErrUsage)
		}
		role := ""
		if len(args) > 2 {
			role = args[2]
		}
		var ttl time.Duration
		if len(args) > 3 {
			d, err := time.ParseDuration(args[3])
			if err != nil {
				return fmt.Errorf("%w: ttl: %v", ErrUsage, err)
			}
			ttl = d
		}
		token, expires, err := tokens.Issue(args[1], role, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, token)
		fmt.Fprintf(out, "# expires %s\n", expires.UTC().Format(time.RFC3339))

	case "export":
		result, err := svc.ExportSnapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported snapshot %s: %d orders, %d expenses.\n",
			result.SnapshotID, result.Orders, result.Expenses)

	default:
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], usage)
	}
	return nil
}
