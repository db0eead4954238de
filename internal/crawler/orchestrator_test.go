package crawler

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(details DetailSource, events *eventLog, opts ...OrchestratorOption) *Orchestrator {
	o := NewOrchestrator(details, opts...)
	o.sleep = events.sleep
	return o
}

func registeredRecords(n int) []SearchResultRecord {
	records := make([]SearchResultRecord, n)
	for i := range records {
		records[i] = SearchResultRecord{
			Title:              fmt.Sprintf("특허 %d", i+1),
			FilingNumber:       fmt.Sprintf("102019000000%d", i+1),
			RegistrationNumber: fmt.Sprintf("102000000%d0000", i+1),
			ApplicantName:      "주식회사 한빛테크",
			RightsHolderName:   "주식회사 한빛테크",
		}
	}
	return records
}

// Four registered results: every record is looked up, one at a time, with the
// detail delay after each lookup.
func TestEnrichAllRegistered(t *testing.T) {
	events := &eventLog{}
	details := &mockDetailSource{log: events}
	records := registeredRecords(4)

	out := newTestOrchestrator(details, events).Enrich(context.Background(), records)

	require.Len(t, out, 4)
	assert.Equal(t, 4, details.calls)
	delay := "sleep:" + DefaultDetailDelay.String()
	assert.Equal(t, []string{
		"lookup:" + records[0].RegistrationNumber, delay,
		"lookup:" + records[1].RegistrationNumber, delay,
		"lookup:" + records[2].RegistrationNumber, delay,
		"lookup:" + records[3].RegistrationNumber, delay,
	}, events.all())
	for i, rec := range out {
		assert.Equal(t, records[i].Title, rec.Title)
		assert.Equal(t, StatusMaintained, rec.RegistrationStatus)
	}
}

func TestEnrichEmpty(t *testing.T) {
	events := &eventLog{}
	details := &mockDetailSource{log: events}

	out := newTestOrchestrator(details, events).Enrich(context.Background(), nil)

	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Zero(t, details.calls)
	assert.Empty(t, events.all())
}

func TestEnrichDetailFailureKeepsBaseFields(t *testing.T) {
	events := &eventLog{}
	records := registeredRecords(3)
	details := &mockDetailSource{
		log:  events,
		errs: map[string]error{records[1].RegistrationNumber: stderrors.New("info table not visible")},
		details: map[string]*DetailInfoRecord{
			records[2].RegistrationNumber: {RegistrationStatus: "등록유지", ClaimCount: "7", ExpirationDate: "2040.01.01", ValidityStatus: "등록유지"},
		},
	}

	out := newTestOrchestrator(details, events).Enrich(context.Background(), records)
	require.Len(t, out, 3)

	failed := out[1]
	assert.Equal(t, records[1], failed.SearchResultRecord)
	assert.Equal(t, UnknownValue, failed.RegistrationStatus)
	assert.Equal(t, UnknownValue, failed.ClaimCount)
	assert.Equal(t, UnknownValue, failed.ExpirationDate)
	assert.Equal(t, UnknownValue, failed.ValidityStatus)
	assert.Nil(t, failed.CurrentAnnualInfo)
	assert.Nil(t, failed.PreviousAnnualInfo)
	assert.Contains(t, failed.DetailError, "info table not visible")

	assert.Equal(t, "7", out[2].ClaimCount)
	assert.Equal(t, "2040.01.01", out[2].ExpirationDate)
	assert.Empty(t, out[2].DetailError)
	assert.Equal(t, 3, details.calls)
}

func TestEnrichSkipsUnregistered(t *testing.T) {
	events := &eventLog{}
	details := &mockDetailSource{log: events}
	records := []SearchResultRecord{
		{Title: "출원 1"},
		{Title: "등록 1", RegistrationNumber: "1021234560000"},
		{Title: "출원 2", RegistrationNumber: UnknownValue},
	}

	out := newTestOrchestrator(details, events).Enrich(context.Background(), records)

	require.Len(t, out, 3)
	assert.Equal(t, 1, details.calls)
	assert.Equal(t, UnknownValue, out[0].RegistrationStatus)
	assert.Equal(t, StatusMaintained, out[1].RegistrationStatus)
	assert.Equal(t, UnknownValue, out[2].RegistrationStatus)
	assert.Empty(t, out[0].DetailError)
}

func TestEnrichNeverDropsRecords(t *testing.T) {
	for n := 0; n <= 6; n++ {
		records := registeredRecords(n)
		errs := map[string]error{}
		for i, rec := range records {
			if i%2 == 1 {
				errs[rec.RegistrationNumber] = stderrors.New("boom")
			}
			if i%3 == 2 {
				records[i].RegistrationNumber = ""
			}
		}
		events := &eventLog{}
		out := newTestOrchestrator(&mockDetailSource{errs: errs}, events).Enrich(context.Background(), records)

		require.Len(t, out, n)
		for i := range out {
			assert.Equal(t, records[i].Title, out[i].Title)
		}
	}
}

func TestEnrichMapsAnnuityRows(t *testing.T) {
	events := &eventLog{}
	records := registeredRecords(1)
	details := &mockDetailSource{details: map[string]*DetailInfoRecord{
		records[0].RegistrationNumber: {
			RegistrationStatus: StatusMaintained,
			ValidityStatus:     StatusMaintained,
			ClaimCount:         "12",
			ExpirationDate:     "2039.06.12",
			LastRow:            &AnnuityPaymentRow{Year: "5-5", PaidDate: "2024.02.09", PaidAmount: "56,000원50%28,000원"},
			PrevRow:            &AnnuityPaymentRow{Year: "4", PaidDate: "2023.02.28", PaidAmount: ""},
		},
	}}

	out := newTestOrchestrator(details, events).Enrich(context.Background(), records)
	require.Len(t, out, 1)

	assert.Equal(t, &CurrentAnnualInfo{AnnualYear: "5-5", DueDate: "2024.02.09", AnnualFee: "56,000원50%28,000원"}, out[0].CurrentAnnualInfo)
	assert.Equal(t, &PreviousAnnualInfo{AnnualYear: "4", PaymentDate: "2023.02.28", PaymentAmount: UnknownValue}, out[0].PreviousAnnualInfo)
}

func TestEnrichBibliography(t *testing.T) {
	events := &eventLog{}
	records := registeredRecords(2)
	records[0].InventorName = "김발명"
	bib := &mockBibliography{items: map[string]*Bibliography{
		records[0].FilingNumber: {InventorName: "다른발명자", IPCCode: "H01M 10/42", PublicationDate: "2020.12.01"},
		records[1].FilingNumber: {InventorName: "이발명", IPCCode: "H02J 7/00"},
	}}

	out := newTestOrchestrator(&mockDetailSource{}, events, WithBibliography(bib)).Enrich(context.Background(), records)

	assert.Equal(t, "김발명", out[0].InventorName)
	assert.Equal(t, "H01M 10/42", out[0].IPCCode)
	assert.Equal(t, "2020.12.01", out[0].PublicationDate)
	assert.Equal(t, "이발명", out[1].InventorName)
	assert.Empty(t, out[1].PublicationDate)
}

func TestEnrichBibliographyFailureIgnored(t *testing.T) {
	events := &eventLog{}
	bib := &mockBibliography{err: stderrors.New("api down")}

	out := newTestOrchestrator(&mockDetailSource{}, events, WithBibliography(bib)).Enrich(context.Background(), registeredRecords(2))

	require.Len(t, out, 2)
	assert.Empty(t, out[0].IPCCode)
}

func TestEnrichCanceledKeepsRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	details := &mockDetailSource{}

	out := newTestOrchestrator(details, &eventLog{}).Enrich(ctx, registeredRecords(3))

	require.Len(t, out, 3)
	assert.Zero(t, details.calls)
	assert.Equal(t, UnknownValue, out[0].RegistrationStatus)
}

func TestEnrichRealDelay(t *testing.T) {
	records := registeredRecords(3)
	var stamps []time.Time
	details := &stampedDetailSource{stamps: &stamps}

	o := NewOrchestrator(details, WithDetailDelay(20*time.Millisecond))
	out := o.Enrich(context.Background(), records)

	require.Len(t, out, 3)
	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), 20*time.Millisecond)
	}
}

type stampedDetailSource struct {
	stamps *[]time.Time
}

func (s *stampedDetailSource) Lookup(context.Context, string) (*DetailInfoRecord, error) {
	*s.stamps = append(*s.stamps, time.Now())
	return &DetailInfoRecord{}, nil
}

func TestNewPatentBatch(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	empty := NewPatentBatch("120190612244", nil, now)
	assert.Equal(t, NoPatentsFound, empty.ApplicantName)
	assert.Equal(t, NoPatentsFound, empty.FinalRightsHolder)
	assert.Equal(t, 0, empty.TotalCount)
	assert.NotNil(t, empty.Patents)

	patents := []EnhancedPatentRecord{{SearchResultRecord: SearchResultRecord{ApplicantName: "주식회사 한빛테크", RightsHolderName: "한빛홀딩스"}}}
	batch := NewPatentBatch("120190612244", patents, now)
	assert.Equal(t, "주식회사 한빛테크", batch.ApplicantName)
	assert.Equal(t, "한빛홀딩스", batch.FinalRightsHolder)
	assert.Equal(t, 1, batch.TotalCount)
	assert.Equal(t, now, batch.CrawledAt)
}

// Cache hits never reach the portal, so only live lookups are paced.
func TestEnrichSkipsPacingOnCacheHit(t *testing.T) {
	events := &eventLog{}
	mockCache := NewMockCacheService()
	mockCache.cache["detail:21234560000"] = []byte(`{"registrationStatus":"등록유지","claimCount":"9"}`)
	details := NewCachedDetailSource(&mockDetailSource{log: events}, mockCache, time.Hour)
	records := []SearchResultRecord{
		{Title: "캐시됨", RegistrationNumber: "1021234560000"},
		{Title: "조회됨", RegistrationNumber: "1021234570000"},
	}

	out := newTestOrchestrator(details, events).Enrich(context.Background(), records)

	require.Len(t, out, 2)
	assert.Equal(t, "9", out[0].ClaimCount)
	assert.Equal(t, []string{
		"lookup:1021234570000", "sleep:" + DefaultDetailDelay.String(),
	}, events.all())
}
