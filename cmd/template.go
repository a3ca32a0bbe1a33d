package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/parcelworks/siteassess/internal/report"
)

var templateOutput string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Write an example input template",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := report.WriteTemplate(templateOutput); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Template written to %s\n", templateOutput)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateOutput, "output", "模板.xlsx", "path for the template workbook")
	rootCmd.AddCommand(templateCmd)
}
