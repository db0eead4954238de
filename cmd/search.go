package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sjsage522/patentworker/config"
	"sjsage522/patentworker/internal"
	"sjsage522/patentworker/internal/crawler"
	"sjsage522/patentworker/pkg/errors"
)

var searchListOnly bool

var searchCmd = &cobra.Command{
	Use:   "search <customer-number>",
	Short: "고객번호의 특허 목록과 등록 정보를 조회해 JSON으로 출력합니다",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		customer := args[0]
		if !config.ValidCustomerNumber(customer) {
			return errors.NewValidation("cli", fmt.Sprintf("customer number must be 12 digits, got %q", customer))
		}

		deps, err := internal.NewDependencies(c.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer deps.Close()
		pipeline := deps.Pipeline(cfg)

		if searchListOnly {
			records, err := pipeline.List.Search(c.Context(), crawler.CustomerQuery(customer))
			if err != nil {
				return err
			}
			return writeJSON(c.OutOrStdout(), records)
		}

		batch, err := pipeline.Run(c.Context(), customer)
		if err != nil {
			return err
		}
		return writeJSON(c.OutOrStdout(), batch)
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchListOnly, "list-only", false, "KIPRIS 검색 결과만 출력하고 특허로 조회는 건너뜁니다")
	rootCmd.AddCommand(searchCmd)
}
