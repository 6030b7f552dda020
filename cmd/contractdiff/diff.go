package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticework/contractdiff/pkg/contractdiff"
)

func newDiffCmd() *cobra.Command {
	var profilePath string
	var minRisk string
	cmd := &cobra.Command{
		Use:   "diff <original.txt> <revised.txt>",
		Short: "Print only the semantic changes between two versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(profilePath)
			if err != nil {
				return err
			}
			textA, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			textB, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[1], err)
			}

			result, _ := contractdiff.Compare(string(textA), string(textB), profile)
			wire := result.ToWire()

			changes := wire.Changes
			if minRisk != "" {
				changes = filterByRisk(changes, minRisk)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(changes)
		},
	}
	cmd.Flags().StringVar(&profilePath, "config", "", "path to a YAML similarity/token-alignment profile")
	cmd.Flags().StringVar(&minRisk, "min-risk", "", "only show changes at or above this risk level (low, medium, high, critical)")
	return cmd
}

var riskRank = map[string]int{"low": 0, "medium": 1, "high": 2, "critical": 3}

func filterByRisk(changes []contractdiff.WireChange, min string) []contractdiff.WireChange {
	threshold, ok := riskRank[min]
	if !ok {
		return changes
	}
	var out []contractdiff.WireChange
	for _, c := range changes {
		if riskRank[c.Risk] >= threshold {
			out = append(out, c)
		}
	}
	return out
}
