package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/internal/browser"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/pkg/errors"
)

const patentGoProvider = "patentgo"

// PatentGoStepTimeout bounds every navigation and wait in the detail flow.
const PatentGoStepTimeout = 30 * time.Second

// patent.go.kr selectors. Browser selectors use text pseudo-classes; the
// parse selectors are their goquery equivalents.
const (
	patentGoCaseTab         = `a:has-text("사건번호별검색")`
	patentGoKeyType         = "#selectNum2"
	patentGoKeyRegistration = "rgst"
	patentGoSerialInput     = "#txtRgstNo02"
	patentGoMiddleInput     = "#txtRgstNo03"
	patentGoSuffixInput     = "#txtRgstNo04"
	patentGoResultPath      = "ReadChgFrmRgstInfo.do"

	patentGoInfoTable      = `#docBase1 table.board_list:has(caption:has-text("등록정보 상세정보조회"))`
	patentGoInfoTableParse = `#docBase1 table.board_list:has(caption:contains("등록정보 상세정보조회"))`
	patentGoAnnuityTable   = `div.board_header:has(h5:contains("연차등록정보")) + div.board_body table.board_list`
)

// Calls the page's own submit handler, fnSearch, instead of clicking search.
// The handler name is tied to the current site build.
const patentGoSubmitScript = `() => { try { if (typeof fnSearch === 'function') fnSearch(1); } catch (_) {} }`

// Info table labels.
const (
	labelRegistrationStatus = "등록상태"
	labelClaimCount         = "청구범위 항수"
	labelExpirationDate     = "존속기간 만료일자"
)

// PatentGoDetailExtractor reads registration status and annuity history from patent.go.kr.
type PatentGoDetailExtractor struct {
	launcher browser.Launcher
	url      string
	retry    helpers.RetryOptions
	log      *logger.Logger
}

// NewPatentGoDetailExtractor creates a detail extractor starting at the form page url.
func NewPatentGoDetailExtractor(launcher browser.Launcher, url string, retry helpers.RetryOptions) *PatentGoDetailExtractor {
	return &PatentGoDetailExtractor{
		launcher: launcher,
		url:      url,
		retry:    retry,
		log:      logger.ForExtractor(patentGoProvider),
	}
}

// Lookup returns the registration detail for registrationNumber. Each retry opens a new session.
func (e *PatentGoDetailExtractor) Lookup(ctx context.Context, registrationNumber string) (*DetailInfoRecord, error) {
	segments, err := SplitRegistrationNumber(registrationNumber)
	if err != nil {
		return nil, err
	}
	return helpers.WithRetry(ctx, e.retry, func(attempt int) (*DetailInfoRecord, error) {
		detail, err := e.lookup(ctx, segments)
		if err != nil {
			e.log.Warn().Err(err).Int("attempt", attempt).Str("registration_number", registrationNumber).Msg("detail attempt failed")
		}
		return detail, err
	})
}

func (e *PatentGoDetailExtractor) lookup(ctx context.Context, seg RegistrationSegments) (*DetailInfoRecord, error) {
	session, err := e.launcher.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()
	page := session.Page()
	log := e.log.WithField("registration_number", seg.String())
	phase := func(name string) { log.Debug().Str("phase", name).Msg("detail extraction") }
	phase("session_open")

	if err := page.Goto(e.url, browser.NavigateOptions{WaitUntil: browser.LoadStateLoad, Timeout: PatentGoStepTimeout}); err != nil {
		return nil, err
	}
	phase("form_page")

	if n, _ := page.Count(patentGoCaseTab); n > 0 {
		if err := page.Click(patentGoCaseTab); err != nil {
			return nil, err
		}
	}
	if err := page.SelectOption(patentGoKeyType, patentGoKeyRegistration); err != nil {
		return nil, err
	}
	if err := page.WaitVisible(patentGoSerialInput, PatentGoStepTimeout); err != nil {
		return nil, err
	}
	phase("tab_selected")

	for _, f := range []struct{ selector, value string }{
		{patentGoSerialInput, seg.Serial},
		{patentGoMiddleInput, seg.Middle},
		{patentGoSuffixInput, seg.Suffix},
	} {
		if err := page.Fill(f.selector, f.value); err != nil {
			return nil, err
		}
	}
	phase("fields_filled")

	if _, err := page.Evaluate(patentGoSubmitScript); err != nil {
		// A missing handler surfaces as the URL wait below timing out.
		log.Debug().Err(err).Msg("submit script failed")
	}
	phase("submitted")

	if err := page.WaitForURL(patentGoResultPath, PatentGoStepTimeout); err != nil {
		return nil, err
	}
	if err := page.WaitForLoadState(browser.LoadStateNetworkIdle, PatentGoStepTimeout); err != nil {
		return nil, err
	}
	if err := page.WaitVisible(patentGoInfoTable, PatentGoStepTimeout); err != nil {
		return nil, errors.NewStructure(patentGoProvider, "registration info table not visible", err)
	}
	phase("result_page_loaded")

	html, err := page.Content()
	if err != nil {
		return nil, err
	}
	detail, err := parseDetailPage(html)
	if err != nil {
		return nil, err
	}
	phase("fields_read")

	log.Info().
		Str("status", detail.RegistrationStatus).
		Bool("has_last_row", detail.LastRow != nil).
		Msg("detail lookup completed")
	return detail, nil
}

// parseDetailPage reads the info table and, for maintained rights, the last
// two rows of the annuity history.
func parseDetailPage(html string) (*DetailInfoRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewParsing(patentGoProvider, "HTML 파싱 오류", err)
	}

	table := doc.Find(patentGoInfoTableParse).First()
	if table.Length() == 0 {
		return nil, errors.NewStructure(patentGoProvider, "registration info table not found", nil)
	}

	status, err := infoField(table, labelRegistrationStatus)
	if err != nil {
		return nil, err
	}
	claims, err := infoField(table, labelClaimCount)
	if err != nil {
		return nil, err
	}
	expiration, err := infoField(table, labelExpirationDate)
	if err != nil {
		return nil, err
	}

	detail := &DetailInfoRecord{
		RegistrationStatus: status,
		ClaimCount:         helpers.LeadingDigits(claims),
		ExpirationDate:     helpers.NormalizeDate(expiration),
		ValidityStatus:     status,
	}
	// The portal sometimes spaces the status word, e.g. "등록 유지"
	if strings.ReplaceAll(status, " ", "") == StatusMaintained {
		detail.LastRow, detail.PrevRow = annuityRows(doc)
	}
	return detail, nil
}

func infoField(table *goquery.Selection, label string) (string, error) {
	cell := table.Find(fmt.Sprintf(`th:contains("%s") + td`, label)).First()
	if cell.Length() == 0 {
		return "", errors.NewStructure(patentGoProvider, fmt.Sprintf("row %q missing from info table", label), nil)
	}
	return helpers.NormalizeWhitespace(cell.Text()), nil
}

// annuityRows returns the last and second-to-last payment rows in table order.
// Rows without the three data cells, such as an empty-table notice, are ignored.
func annuityRows(doc *goquery.Document) (last, prev *AnnuityPaymentRow) {
	var rows []*AnnuityPaymentRow
	doc.Find(patentGoAnnuityTable).First().Find("tbody > tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 3 {
			return
		}
		rows = append(rows, &AnnuityPaymentRow{
			Year:       helpers.NormalizeWhitespace(tds.Eq(0).Text()),
			PaidDate:   helpers.NormalizeDate(tds.Eq(1).Text()),
			PaidAmount: helpers.NormalizeAmount(tds.Eq(2).Text()),
		})
	})

	n := len(rows)
	if n >= 1 {
		last = rows[n-1]
	}
	if n >= 2 {
		prev = rows[n-2]
	}
	return last, prev
}
