package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticework/contractdiff/internal/config"
	"github.com/latticework/contractdiff/pkg/contractdiff"
)

func newCompareCmd() *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "compare <original.txt> <revised.txt>",
		Short: "Run the full pipeline and print a ComparisonResult as JSON",
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

			result, procErrs := contractdiff.Compare(string(textA), string(textB), profile)
			for _, e := range procErrs {
				fmt.Fprintln(os.Stderr, "warning:", e)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result.ToWire())
		},
	}
	cmd.Flags().StringVar(&profilePath, "config", "", "path to a YAML similarity/token-alignment profile")
	return cmd
}

func loadProfile(path string) (config.Profile, error) {
	if path == "" {
		return config.DefaultProfile(), nil
	}
	return config.LoadFromFile(path)
}
