package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticework/contractdiff/pkg/contractdiff"
)

func newAlignCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "align <original.txt> <revised.txt>",
		Short: "Print only the section alignment between two versions",
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

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(wire.AlignedPairs)
		},
	}
	cmd.Flags().StringVar(&profilePath, "config", "", "path to a YAML similarity/token-alignment profile")
	return cmd
}
