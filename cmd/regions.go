package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/jeonse-risk/internal/risk"
)

var regionsOutput string

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show the small-deposit priority table in effect",
	RunE: func(cmd *cobra.Command, _ []string) error {
		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		return writeRegions(os.Stdout, engine.Regions().Regions(), regionsOutput)
	},
}

func init() {
	regionsCmd.Flags().StringVar(&regionsOutput, "output", "table", "output format: table or json")
	rootCmd.AddCommand(regionsCmd)
}

func writeRegions(w io.Writer, regions []risk.Region, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(regions), "write regions json")
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "Key\tLabel\tThreshold\tProtected\tMatch")
		for _, r := range regions {
			match := strings.Join(r.Match, ",")
			if match == "" {
				match = "(fallback)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Key, r.Label, formatWon(r.Threshold), formatWon(r.ProtectedCap), match)
		}
		return eris.Wrap(tw.Flush(), "write regions table")
	default:
		return eris.Errorf("unknown output format %q", format)
	}
}
