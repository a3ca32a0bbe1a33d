package main

import (
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelworks/siteassess/internal/report"
)

var (
	assessTemplate string
	assessOutput   string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run the assessment for a template of communities",
	Long:  "Reads the 分组/小区/类型 template, enriches every community, and writes the grouped comparison workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rows, err := report.ReadTemplate(assessTemplate)
		if err != nil {
			return err
		}
		addresses := report.Addresses(rows)
		if len(addresses) == 0 {
			return eris.New("template contains no communities")
		}

		p, err := initPipeline()
		if err != nil {
			return err
		}

		bar := progressbar.Default(int64(len(addresses)), "assessing")
		result, err := p.Run(ctx, addresses, func(done, total int, address string) {
			_ = bar.Add(1)
		})
		if err != nil {
			return eris.Wrap(err, "assessment run")
		}

		output := assessOutput
		if output == "" {
			output = cfg.Report.Output
		}
		if err := report.Write(output, rows, result, cfg.Fields); err != nil {
			return err
		}

		zap.L().Info("assessment complete",
			zap.String("run_id", result.RunID),
			zap.Int("communities", len(result.Records)),
			zap.Int("skipped", len(result.Skipped)),
			zap.String("output", output),
		)
		return nil
	},
}

func init() {
	assessCmd.Flags().StringVar(&assessTemplate, "template", "", "path to the input template workbook (required)")
	assessCmd.Flags().StringVar(&assessOutput, "output", "", "path for the report workbook (default from config)")
	_ = assessCmd.MarkFlagRequired("template")
	rootCmd.AddCommand(assessCmd)
}
