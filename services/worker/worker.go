package worker

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/internal/crawler"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/services/publisher"
)

// Runner produces the patent batch for one customer number
type Runner interface {
	Run(ctx context.Context, customerNumber string) (crawler.PatentBatch, error)
}

// Worker handles the crawling and publishing process
type Worker struct {
	runner        Runner
	publisher     publisher.Publisher
	logger        helpers.LoggerInterface
	customers     []string
	crawlInterval time.Duration
	concurrency   int
	log           *logger.Logger
}

// NewWorker creates a new worker
func NewWorker(
	runner Runner,
	pub publisher.Publisher,
	errLogger helpers.LoggerInterface,
	customers []string,
	crawlInterval time.Duration,
	concurrency int,
) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Worker{
		runner:        runner,
		publisher:     pub,
		logger:        errLogger,
		customers:     customers,
		crawlInterval: crawlInterval,
		concurrency:   concurrency,
		log:           logger.ForWorker(),
	}
}

// Start runs a crawl cycle every crawlInterval until ctx is canceled
func (w *Worker) Start(ctx context.Context) error {
	for {
		start := time.Now()
		published := w.RunOnce(ctx)
		if os.Getenv("PATENT_ENVIRONMENT") != "production" {
			w.logger.LogInfo("크롤링 소요 시간: %s (%d/%d 고객)", time.Since(start), published, len(w.customers))
		}

		if err := helpers.Sleep(ctx, w.crawlInterval); err != nil {
			w.log.Info().Msg("Worker stopped")
			return nil
		}
	}
}

// RunOnce crawls every customer and trims the streams.
// Returns how many batches were published.
func (w *Worker) RunOnce(ctx context.Context) int {
	var published atomic.Int32

	g := new(errgroup.Group)
	g.SetLimit(w.concurrency)
	for _, customer := range w.customers {
		customer := customer
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if w.crawlAndPublish(ctx, customer) {
				published.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	// Trim all streams after crawling
	if err := w.publisher.TrimStreams(ctx); err != nil {
		w.logger.LogError("StreamTrimming", err)
	}
	return int(published.Load())
}

// crawlAndPublish runs the pipeline for one customer and publishes the batch
func (w *Worker) crawlAndPublish(ctx context.Context, customer string) bool {
	batch, err := w.runner.Run(ctx, customer)
	if err != nil {
		w.logger.LogError(customer, err)
		return false
	}

	data, err := json.Marshal(batch)
	if err != nil {
		w.logger.LogError(customer, err)
		return false
	}

	if err := w.publisher.Publish(ctx, customer, data); err != nil {
		w.logger.LogError(customer, err)
		return false
	}

	w.logSummary(batch)
	return true
}

func (w *Worker) logSummary(batch crawler.PatentBatch) {
	if os.Getenv("PATENT_ENVIRONMENT") == "production" {
		return
	}
	failed := 0
	for _, p := range batch.Patents {
		if p.DetailError != "" {
			failed++
		}
	}
	w.logger.LogInfo("크롤링 데이터: %s %s 특허 %d건 (상세 실패 %d건)",
		batch.CustomerNumber, batch.FinalRightsHolder, batch.TotalCount, failed)
}
