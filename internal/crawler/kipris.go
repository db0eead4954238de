package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/internal/browser"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/pkg/errors"
)

const kiprisProvider = "kipris"

// KIPRIS page timings. The result list renders after the network goes idle,
// so fixed settle delays follow the idle waits.
const (
	KiprisNavigationTimeout  = 60 * time.Second
	KiprisQueryInputTimeout  = 15 * time.Second
	KiprisResultsIdleTimeout = 30 * time.Second
	KiprisResultsSettleDelay = 5 * time.Second
	KiprisToggleSettleDelay  = 2 * time.Second
)

// KIPRIS selectors.
const (
	kiprisQueryInput      = "#inputQuery"
	kiprisResultCard      = "article.result-item"
	kiprisSeojiToggle     = "button[data-view-option='seoji']"
	kiprisSeojiTextToggle = "button:has-text('서지정보')"
	kiprisCardTitle       = "h1.title button"
)

// Phrases KIPRIS shows on an empty result page.
var kiprisNoResultPhrases = []string{"검색결과가 없습니다", "검색 결과가 없습니다", "결과가 없습니다"}

// KiprisListExtractor searches the KIPRIS portal and reads the result cards.
type KiprisListExtractor struct {
	launcher browser.Launcher
	url      string
	retry    helpers.RetryOptions
	sleep    func(context.Context, time.Duration) error
	log      *logger.Logger

	resultsSettle time.Duration
	toggleSettle  time.Duration
}

// NewKiprisListExtractor creates a list extractor for the portal landing page at url.
func NewKiprisListExtractor(launcher browser.Launcher, url string, retry helpers.RetryOptions) *KiprisListExtractor {
	return &KiprisListExtractor{
		launcher:      launcher,
		url:           url,
		retry:         retry,
		sleep:         helpers.Sleep,
		log:           logger.ForExtractor(kiprisProvider),
		resultsSettle: KiprisResultsSettleDelay,
		toggleSettle:  KiprisToggleSettleDelay,
	}
}

// Search submits query verbatim and returns the cards found. An empty slice
// means the portal had no results.
func (e *KiprisListExtractor) Search(ctx context.Context, query string) ([]SearchResultRecord, error) {
	return helpers.WithRetry(ctx, e.retry, func(attempt int) ([]SearchResultRecord, error) {
		records, err := e.search(ctx, query)
		if err != nil {
			e.log.Warn().Err(err).Int("attempt", attempt).Str("query", query).Msg("search attempt failed")
		}
		return records, err
	})
}

func (e *KiprisListExtractor) search(ctx context.Context, query string) ([]SearchResultRecord, error) {
	session, err := e.launcher.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	page := session.Page()
	e.phase("session_open")

	if err := page.Goto(e.url, browser.NavigateOptions{WaitUntil: browser.LoadStateNetworkIdle, Timeout: KiprisNavigationTimeout}); err != nil {
		return nil, err
	}
	e.phase("navigated")

	if err := page.WaitVisible(kiprisQueryInput, KiprisQueryInputTimeout); err != nil {
		return nil, err
	}
	if err := page.Fill(kiprisQueryInput, query); err != nil {
		return nil, err
	}
	if err := page.Press(kiprisQueryInput, "Enter"); err != nil {
		return nil, err
	}
	e.phase("query_submitted")

	if err := page.WaitForLoadState(browser.LoadStateNetworkIdle, KiprisResultsIdleTimeout); err != nil {
		return nil, err
	}
	if err := e.sleep(ctx, e.resultsSettle); err != nil {
		return nil, err
	}
	e.phase("results_loaded")

	e.activateBibliographicView(ctx, page)

	html, err := page.Content()
	if err != nil {
		return nil, err
	}
	e.phase("extracting_fields")

	records, err := parseResultCards(html, e.log)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		e.logEmptyResult(page, html)
	}
	e.log.Info().Str("query", query).Int("count", len(records)).Msg("search completed")
	return records, nil
}

// activateBibliographicView switches the list to the bibliographic layout when
// a toggle is present. Nothing here aborts the search.
func (e *KiprisListExtractor) activateBibliographicView(ctx context.Context, page browser.Page) {
	if visible, _ := page.IsVisible(kiprisSeojiToggle); visible {
		class, _ := page.GetAttribute(kiprisSeojiToggle, "class")
		if strings.Contains(class, "active") {
			e.log.Debug().Msg("bibliographic view already active")
			return
		}
		if err := page.Click(kiprisSeojiToggle); err != nil {
			e.log.Debug().Err(err).Msg("bibliographic toggle click failed")
			return
		}
		_ = e.sleep(ctx, e.toggleSettle)
		e.phase("view_toggled")
		return
	}

	if visible, _ := page.IsVisible(kiprisSeojiTextToggle); visible {
		if err := page.Click(kiprisSeojiTextToggle); err != nil {
			e.log.Debug().Err(err).Msg("bibliographic text toggle click failed")
			return
		}
		_ = e.sleep(ctx, e.toggleSettle)
		e.phase("view_toggled")
		return
	}
	e.log.Debug().Msg("bibliographic toggle not found")
}

func (e *KiprisListExtractor) logEmptyResult(page browser.Page, html string) {
	title, _ := page.Title()
	event := e.log.Info().Str("url", page.URL()).Str("title", title)
	for _, phrase := range kiprisNoResultPhrases {
		if strings.Contains(html, phrase) {
			event = event.Str("phrase", phrase)
			break
		}
	}
	event.Msg("no result cards found")
}

func (e *KiprisListExtractor) phase(name string) {
	e.log.Debug().Str("phase", name).Msg("list extraction")
}

// parseResultCards reads every result card in html. Each field is extracted
// independently so a missing or malformed field only blanks that field.
func parseResultCards(html string, log *logger.Logger) ([]SearchResultRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewParsing(kiprisProvider, "HTML 파싱 오류", err)
	}

	records := make([]SearchResultRecord, 0)
	doc.Find(kiprisResultCard).Each(func(i int, card *goquery.Selection) {
		records = append(records, parseResultCard(card, log.WithField("card", i)))
	})
	return records, nil
}

func parseResultCard(card *goquery.Selection, log *logger.Logger) SearchResultRecord {
	var rec SearchResultRecord

	rec.Title = cleanTitle(applyHandlers(card, "title", log, textOf(kiprisCardTitle)))

	filing := applyHandlers(card, "filing", log, textOf(fieldValue("srlt.patent.an", "p.txt")))
	rec.FilingNumber, rec.FilingDate = splitNumberDate(filing)

	registration := applyHandlers(card, "registration", log, textOf(fieldValue("srlt.patent.rn", "p.txt")))
	rec.RegistrationNumber, rec.RegistrationDate = splitNumberDate(registration)

	rec.ApplicantName = applyHandlers(card, "applicant", log,
		textOf(fieldValue("srlt.patent.ap", "button")),
		firstListed(fieldValue("srlt.patent.ap", "p.txt")),
	)
	rec.RightsHolderName = applyHandlers(card, "rights_holder", log,
		textOf(fieldValue("srlt.patent.trh", "button")),
		firstListed(fieldValue("srlt.patent.trh", "p.txt")),
		func(*goquery.Selection) string { return rec.ApplicantName },
	)
	rec.InventorName = applyHandlers(card, "inventor", log,
		textOf(fieldValue("srlt.patent.in", "button")),
		firstListed(fieldValue("srlt.patent.in", "p.txt")),
	)
	return rec
}
