package cmd

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"

	"sjsage522/patentworker/config"
)

// cfg is loaded before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "patentworker",
	Short: "KIPRIS 특허 목록과 특허로 등록 정보를 수집합니다",
	Long: `
patentworker는 고객번호로 KIPRIS에서 최종권리자 특허 목록을 검색하고,
등록번호가 있는 건마다 특허로에서 등록상태와 연차료 납부 정보를 조회해
하나의 결과로 합칩니다.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		cfg = config.LoadConfig()
		return cfg.Validate()
	},
}

// Execute runs the root command
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
