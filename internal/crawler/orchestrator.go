package crawler

import (
	"context"
	"time"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/logger"
)

// DefaultDetailDelay spaces consecutive detail lookups; the detail site blocks bursts.
const DefaultDetailDelay = time.Second

// Orchestrator merges search results with their registration detail.
type Orchestrator struct {
	details      DetailSource
	bibliography BibliographySource
	delay        time.Duration
	sleep        func(context.Context, time.Duration) error
	log          *logger.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithDetailDelay sets the pause after each detail lookup.
func WithDetailDelay(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) { o.delay = d }
}

// WithBibliography enables open-API enrichment of inventor, IPC and publication date.
func WithBibliography(src BibliographySource) OrchestratorOption {
	return func(o *Orchestrator) { o.bibliography = src }
}

// NewOrchestrator creates an orchestrator over details.
func NewOrchestrator(details DetailSource, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		details: details,
		delay:   DefaultDetailDelay,
		sleep:   helpers.Sleep,
		log:     logger.ForOrchestrator(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enrich looks up detail for each record with a registration number, one at a
// time, and returns one merged record per input record in input order. A
// failed lookup leaves placeholder detail fields on that record only.
func (o *Orchestrator) Enrich(ctx context.Context, records []SearchResultRecord) []EnhancedPatentRecord {
	out := make([]EnhancedPatentRecord, 0, len(records))
	for i, rec := range records {
		merged := baseRecord(rec)

		if hasRegistrationNumber(rec.RegistrationNumber) && ctx.Err() == nil {
			detail, cached, err := o.lookup(ctx, rec.RegistrationNumber)
			if err != nil {
				o.log.Warn().Err(err).
					Int("index", i).
					Str("registration_number", rec.RegistrationNumber).
					Msg("detail lookup failed, keeping search fields")
				merged.DetailError = err.Error()
			} else {
				applyDetail(&merged, detail)
			}
			if !cached {
				if err := o.sleep(ctx, o.delay); err != nil {
					o.log.Debug().Err(err).Msg("detail pacing interrupted")
				}
			}
		}

		o.enrichBibliography(ctx, &merged)
		out = append(out, merged)
	}
	return out
}

// cachedLookup is implemented by detail sources that can answer without
// contacting the portal.
type cachedLookup interface {
	LookupCached(ctx context.Context, registrationNumber string) (*DetailInfoRecord, bool, error)
}

// lookup reports cached=true only when the portal was not contacted; such
// lookups need no pacing.
func (o *Orchestrator) lookup(ctx context.Context, regNo string) (*DetailInfoRecord, bool, error) {
	if c, ok := o.details.(cachedLookup); ok {
		return c.LookupCached(ctx, regNo)
	}
	detail, err := o.details.Lookup(ctx, regNo)
	return detail, false, err
}

func (o *Orchestrator) enrichBibliography(ctx context.Context, rec *EnhancedPatentRecord) {
	if o.bibliography == nil || rec.FilingNumber == "" || ctx.Err() != nil {
		return
	}
	if rec.InventorName != "" && rec.IPCCode != "" && rec.PublicationDate != "" {
		return
	}
	bib, err := o.bibliography.Bibliography(ctx, rec.FilingNumber)
	if err != nil {
		o.log.Debug().Err(err).Str("application_number", rec.FilingNumber).Msg("bibliography lookup failed")
		return
	}
	if rec.InventorName == "" {
		rec.InventorName = bib.InventorName
	}
	if rec.IPCCode == "" {
		rec.IPCCode = bib.IPCCode
	}
	if rec.PublicationDate == "" {
		rec.PublicationDate = bib.PublicationDate
	}
}

func baseRecord(rec SearchResultRecord) EnhancedPatentRecord {
	return EnhancedPatentRecord{
		SearchResultRecord: rec,
		RegistrationStatus: UnknownValue,
		ClaimCount:         UnknownValue,
		ExpirationDate:     UnknownValue,
		ValidityStatus:     UnknownValue,
	}
}

// applyDetail overlays detail fields onto rec; detail values win.
func applyDetail(rec *EnhancedPatentRecord, d *DetailInfoRecord) {
	rec.RegistrationStatus = orUnknown(d.RegistrationStatus)
	rec.ClaimCount = orUnknown(d.ClaimCount)
	rec.ExpirationDate = orUnknown(d.ExpirationDate)
	rec.ValidityStatus = orUnknown(d.ValidityStatus)

	if d.LastRow != nil {
		rec.CurrentAnnualInfo = &CurrentAnnualInfo{
			AnnualYear: orUnknown(d.LastRow.Year),
			DueDate:    orUnknown(d.LastRow.PaidDate),
			AnnualFee:  orUnknown(d.LastRow.PaidAmount),
		}
	}
	if d.PrevRow != nil {
		rec.PreviousAnnualInfo = &PreviousAnnualInfo{
			AnnualYear:    orUnknown(d.PrevRow.Year),
			PaymentDate:   orUnknown(d.PrevRow.PaidDate),
			PaymentAmount: orUnknown(d.PrevRow.PaidAmount),
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

// NewPatentBatch wraps the merged records of one customer run.
func NewPatentBatch(customerNumber string, patents []EnhancedPatentRecord, crawledAt time.Time) PatentBatch {
	batch := PatentBatch{
		CustomerNumber:    customerNumber,
		ApplicantName:     NoPatentsFound,
		FinalRightsHolder: NoPatentsFound,
		TotalCount:        len(patents),
		Patents:           patents,
		CrawledAt:         crawledAt,
	}
	if len(patents) > 0 {
		batch.ApplicantName = orUnknown(patents[0].ApplicantName)
		batch.FinalRightsHolder = orUnknown(patents[0].RightsHolderName)
	}
	if batch.Patents == nil {
		batch.Patents = []EnhancedPatentRecord{}
	}
	return batch
}

// NoPatentsFound labels the applicant of an empty batch.
const NoPatentsFound = "조회된 특허 없음"
