package crawler

import (
	"context"
	"fmt"
	"time"

	"sjsage522/patentworker/config"
	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/internal/browser"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/pkg/errors"
	"sjsage522/patentworker/services/cache"
)

// CustomerQuery builds the KIPRIS query that lists a customer's rights by final rights holder.
func CustomerQuery(customerNumber string) string {
	return fmt.Sprintf("TRH=[%s]", customerNumber)
}

// Pipeline runs the search and detail stages for one customer.
type Pipeline struct {
	List         ListSource
	Details      DetailSource
	Orchestrator *Orchestrator
	now          func() time.Time
}

// NewPipeline wires the extractors from cfg. cacheSvc and bib are optional.
func NewPipeline(cfg *config.Config, launcher browser.Launcher, cacheSvc cache.CacheService, bib BibliographySource) *Pipeline {
	retry := helpers.RetryOptions{Tries: cfg.RetryTries, Delay: cfg.RetryDelay}

	var details DetailSource = NewPatentGoDetailExtractor(launcher, cfg.PatentGoURL, retry)
	if cacheSvc != nil && cfg.DetailCacheTTL > 0 {
		details = NewCachedDetailSource(details, cacheSvc, cfg.DetailCacheTTL)
	}

	opts := []OrchestratorOption{WithDetailDelay(cfg.DetailDelay)}
	if bib != nil {
		opts = append(opts, WithBibliography(bib))
	}

	p := NewPipelineFromSources(NewKiprisListExtractor(launcher, cfg.KiprisURL, retry), details, opts...)
	logger.Info("Pipeline ready (retry %d x %s, detail delay %s, cache %t, bibliography %t)",
		retry.Tries, retry.Delay, cfg.DetailDelay, cacheSvc != nil, bib != nil)
	return p
}

// NewPipelineFromSources assembles a pipeline from already-built stages.
func NewPipelineFromSources(list ListSource, details DetailSource, opts ...OrchestratorOption) *Pipeline {
	return &Pipeline{
		List:         list,
		Details:      details,
		Orchestrator: NewOrchestrator(details, opts...),
		now:          time.Now,
	}
}

// Run searches customerNumber's rights and merges their registration detail.
// Search failure after retries is returned as is; an empty batch is not an error.
func (p *Pipeline) Run(ctx context.Context, customerNumber string) (PatentBatch, error) {
	if !config.ValidCustomerNumber(customerNumber) {
		return PatentBatch{}, errors.NewValidation(kiprisProvider, fmt.Sprintf("customer number must be 12 digits, got %q", customerNumber))
	}

	records, err := p.List.Search(ctx, CustomerQuery(customerNumber))
	if err != nil {
		return PatentBatch{}, err
	}
	patents := p.Orchestrator.Enrich(ctx, records)
	return NewPatentBatch(customerNumber, patents, p.now()), nil
}
