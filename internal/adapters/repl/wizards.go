package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirmRegenerate asks before the current dataset is discarded. Cached
// insights belong to the old snapshot and are not reused.
func confirmRegenerate(reader *bufio.Reader, out io.Writer) bool {
	fmt.Fprintln(out, "This replaces every order, expense and stock level with freshly generated data.")
	fmt.Fprint(out, "Continue? (y/n): ")
	choice, _ := reader.ReadString('\n')
	choice = strings.TrimSpace(strings.ToLower(choice))
	return choice == "y" || choice == "yes"
}
