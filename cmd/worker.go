package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sjsage522/patentworker/config"
	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/internal"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/pkg/errors"
	"sjsage522/patentworker/services/worker"
)

var workerOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker [customer-number...]",
	Short: "고객번호 목록을 주기적으로 수집해 Redis 스트림에 게시합니다",
	Long: `
인자가 없으면 CUSTOMER_NUMBERS 환경 변수의 고객번호를 사용합니다.
CRAWL_INTERVAL_SECONDS 마다 전체 목록을 다시 수집합니다.
`,
	RunE: func(c *cobra.Command, args []string) error {
		customers := cfg.CustomerNumbers
		if len(args) > 0 {
			customers = args
		}
		if len(customers) == 0 {
			return errors.NewConfiguration("no customer numbers; pass them as arguments or set CUSTOMER_NUMBERS", nil)
		}
		for _, n := range customers {
			if !config.ValidCustomerNumber(n) {
				return errors.NewValidation("cli", fmt.Sprintf("customer number must be 12 digits, got %q", n))
			}
		}

		ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps, err := internal.NewDependencies(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer deps.Close()

		log := logger.ForWorker()
		log.Info().
			Str("environment", cfg.Environment).
			Dur("crawl_interval", cfg.CrawlInterval).
			Int("customers", len(customers)).
			Int("concurrency", cfg.WorkerConcurrency).
			Msg("Starting patent worker")

		w := worker.NewWorker(
			deps.Pipeline(cfg),
			deps.Publisher,
			helpers.NewLogger(cfg.ErrorLogFile),
			customers,
			cfg.CrawlInterval,
			cfg.WorkerConcurrency,
		)
		if workerOnce {
			published := w.RunOnce(ctx)
			log.Info().Int("published", published).Msg("Single run finished")
			return nil
		}

		err = w.Start(ctx)
		log.Info().Msg("Shutting down gracefully...")
		return err
	},
}

func init() {
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "한 번만 수집하고 종료합니다")
	rootCmd.AddCommand(workerCmd)
}
