package crawler

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/logger"
)

var (
	leadingIndexMarker  = regexp.MustCompile(`^\[\d+\]\s*`)
	trailingParenthesis = regexp.MustCompile(`\s*\([^)]*\)$`)
	numberWithDate      = regexp.MustCompile(`(\d[\d\-\s]*?)\s*\((\d{4}[.\-/]\d{1,2}[.\-/]\d{1,2})\)`)
)

// applyHandlers runs handlers in order and returns the first non-empty result.
// A handler that panics on unexpected markup is skipped like one that found nothing.
func applyHandlers(s *goquery.Selection, field string, log *logger.Logger, handlers ...ElementHandler) string {
	for i, handler := range handlers {
		if handler == nil {
			continue
		}
		if result := safeApply(s, field, i, log, handler); result != "" {
			return result
		}
	}
	log.Debug().Str("field", field).Msg("no handler matched")
	return ""
}

func safeApply(s *goquery.Selection, field string, index int, log *logger.Logger, handler ElementHandler) (result string) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("field", field).Int("handler", index).Interface("panic", r).Msg("handler failed")
			result = ""
		}
	}()
	return strings.TrimSpace(handler(s))
}

// textOf returns the normalized text of the first element matching selector.
func textOf(selector string) ElementHandler {
	return func(s *goquery.Selection) string {
		return helpers.NormalizeWhitespace(s.Find(selector).First().Text())
	}
}

// firstListed returns the first comma-separated name in the text of selector.
func firstListed(selector string) ElementHandler {
	return func(s *goquery.Selection) string {
		text := helpers.NormalizeWhitespace(s.Find(selector).First().Text())
		name, _, _ := strings.Cut(text, ",")
		return strings.TrimSpace(name)
	}
}

// fieldValue locates the value block following the label carrying langID.
func fieldValue(langID, valueSelector string) string {
	return "em[data-lang-id='" + langID + "'] ~ div " + valueSelector
}

// cleanTitle strips a leading "[n]" index marker and a trailing parenthesized alternate title.
func cleanTitle(title string) string {
	title = helpers.NormalizeWhitespace(title)
	title = leadingIndexMarker.ReplaceAllString(title, "")
	title = trailingParenthesis.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

// splitNumberDate splits "1020190012345 (2019-06-12)" into number and date.
// Text without the date suffix is returned as the number.
func splitNumberDate(text string) (number, date string) {
	if m := numberWithDate.FindStringSubmatch(text); m != nil {
		return helpers.DigitsOnly(m[1]), m[2]
	}
	return helpers.DigitsOnly(text), ""
}
