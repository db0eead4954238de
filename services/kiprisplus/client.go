// Package kiprisplus is a client for the KIPRIS Plus open API bibliography service.
package kiprisplus

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"sjsage522/patentworker/helpers"
	"sjsage522/patentworker/internal/crawler"
	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/pkg/errors"
)

const provider = "kiprisplus"

// Result codes the API reports in the response header.
const (
	resultOK    = "00"
	resultEmpty = ""
)

type response struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []Item `xml:"item"`
		} `xml:"items"`
	} `xml:"body"`
}

// Item is one bibliography record as returned by the API.
type Item struct {
	ApplicationNumber string `xml:"applicationNumber"`
	ApplicationDate   string `xml:"applicationDate"`
	RegisterNumber    string `xml:"registerNumber"`
	RegisterDate      string `xml:"registerDate"`
	RegisterStatus    string `xml:"registerStatus"`
	InventionTitle    string `xml:"inventionTitle"`
	ApplicantName     string `xml:"applicantName"`
	InventorName      string `xml:"inventorName"`
	IPCCode           string `xml:"ipcCode"`
	PublicationDate   string `xml:"publicationDate"`
	OpeningDate       string `xml:"openDate"`
}

// Client queries getBibliographyDetailInfoSearch.
type Client struct {
	endpoint string
	apiKey   string
	log      *logger.Logger
}

// NewClient creates a client for endpoint authenticated by apiKey.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		log:      logger.ForExtractor(provider),
	}
}

// Lookup returns the raw bibliography item for applicationNumber.
func (c *Client) Lookup(ctx context.Context, applicationNumber string) (*Item, error) {
	appNo := helpers.DigitsOnly(applicationNumber)
	if appNo == "" {
		return nil, errors.NewValidation(provider, fmt.Sprintf("invalid application number %q", applicationNumber))
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errors.NewConfiguration("invalid KIPRIS_API_URL", err)
	}
	q := u.Query()
	q.Set("applicationNumber", appNo)
	q.Set("ServiceKey", c.apiKey)
	u.RawQuery = q.Encode()

	body, err := helpers.FetchWithRandomHeaders(ctx, provider, u.String())
	if err != nil {
		return nil, err
	}

	// body is already UTF-8 whatever the prolog declares
	dec := xml.NewDecoder(body)
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	var resp response
	if err := dec.Decode(&resp); err != nil {
		return nil, errors.NewParsing(provider, "XML 파싱 오류", err)
	}
	if code := strings.TrimSpace(resp.Header.ResultCode); code != resultOK && code != resultEmpty {
		return nil, errors.NewNetwork(provider, fmt.Sprintf("api error %s: %s", code, strings.TrimSpace(resp.Header.ResultMsg)), nil)
	}
	if len(resp.Body.Items.Item) == 0 {
		return nil, errors.NewStructure(provider, "no bibliography for "+appNo, nil)
	}

	item := resp.Body.Items.Item[0]
	c.log.Debug().Str("application_number", appNo).Str("ipc", item.IPCCode).Msg("bibliography fetched")
	return &item, nil
}

// Bibliography implements crawler.BibliographySource.
func (c *Client) Bibliography(ctx context.Context, applicationNumber string) (*crawler.Bibliography, error) {
	item, err := c.Lookup(ctx, applicationNumber)
	if err != nil {
		return nil, err
	}
	publication := item.PublicationDate
	if publication == "" {
		publication = item.OpeningDate
	}
	return &crawler.Bibliography{
		ApplicationNumber: item.ApplicationNumber,
		InventorName:      firstName(item.InventorName),
		IPCCode:           firstName(item.IPCCode),
		PublicationDate:   formatDate(publication),
	}, nil
}

// firstName returns the first entry of a comma or pipe separated list.
func firstName(s string) string {
	s = helpers.NormalizeWhitespace(s)
	if i := strings.IndexAny(s, ",|"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// formatDate turns the API's YYYYMMDD into YYYY.MM.DD.
func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 8 && helpers.DigitsOnly(s) == s {
		return s[:4] + "." + s[4:6] + "." + s[6:]
	}
	return helpers.NormalizeDate(s)
}
