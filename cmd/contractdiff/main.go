// Command contractdiff is the thin CLI host around pkg/contractdiff,
// grounded in the teacher's cmd/regula/main.go cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "contractdiff",
		Short: "Compare two versions of a legal contract",
		Long:  "contractdiff aligns, classifies, and token-diffs two versions of a legal contract's text.",
	}
	root.AddCommand(newCompareCmd())
	root.AddCommand(newAlignCmd())
	root.AddCommand(newDiffCmd())
	return root
}
