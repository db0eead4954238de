package cmd

import (
	"github.com/spf13/cobra"

	"sjsage522/patentworker/internal"
	"sjsage522/patentworker/internal/crawler"
)

var detailCmd = &cobra.Command{
	Use:   "detail <registration-number>",
	Short: "등록번호 하나의 특허로 등록 정보를 조회합니다",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		// Reject malformed numbers before a browser is involved
		if _, err := crawler.SplitRegistrationNumber(args[0]); err != nil {
			return err
		}

		deps, err := internal.NewDependencies(c.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer deps.Close()

		detail, err := deps.Pipeline(cfg).Details.Lookup(c.Context(), args[0])
		if err != nil {
			return err
		}
		return writeJSON(c.OutOrStdout(), detail)
	},
}

func init() {
	rootCmd.AddCommand(detailCmd)
}
