package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadclean/internal/schema"
)

var inspectIn string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the detected layout and inferred column mapping for a file",
	Long: `Parses just enough of the input to report how a clean run would
interpret it: the schema mode, the header list, and the role mapping that
auto-inference would use. Nothing is resolved or written.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		headers, rows, err := readInput(inspectIn)
		if err != nil {
			return err
		}

		mode := schema.Classify(headers)
		mapping := schema.AutoMap(headers)

		report := struct {
			Mode    schema.Mode       `json:"mode"`
			Rows    int               `json:"rows"`
			Headers []string          `json:"headers"`
			Mapping map[string]string `json:"mapping"`
			Slots   []schema.Slot     `json:"email_slots,omitempty"`
		}{
			Mode:    mode,
			Rows:    len(rows),
			Headers: headers,
			Mapping: mapping,
		}
		if mode == schema.ModeMultiEmail {
			report.Slots = schema.EmailSlots(headers)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return eris.Wrap(err, "inspect: encode report")
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectIn, "in", "", "path to input CSV or XLSX (required)")
	_ = inspectCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(inspectCmd)
}
