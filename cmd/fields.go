package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/parcelworks/siteassess/internal/model"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the recognized assessment fields",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatFieldList(os.Stdout, model.DefaultFieldTable().Specs())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

// formatFieldList writes a tabular list of field specs to w.
func formatFieldList(out io.Writer, specs []model.FieldSpec) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "INDEX\tNAME\tRADIUS\tCATEGORIES")
	_, _ = fmt.Fprintln(w, "-----\t----\t------\t----------")

	for _, s := range specs {
		radius := ""
		if s.RequiresRadius {
			radius = "required"
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			s.OriginalIndex,
			s.Name,
			radius,
			strings.Join(s.Categories, "、"),
		)
	}
	_ = w.Flush()
}
