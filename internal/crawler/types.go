package crawler

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// UnknownValue is the placeholder for detail fields that could not be read.
const UnknownValue = "-"

// StatusMaintained is the registration status that gates annuity extraction.
const StatusMaintained = "등록유지"

// SearchResultRecord is one result card from the KIPRIS search list.
type SearchResultRecord struct {
	Title              string `json:"title"`
	FilingNumber       string `json:"applicationNumber,omitempty"`
	FilingDate         string `json:"applicationDate,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	RegistrationDate   string `json:"registrationDate,omitempty"`
	ApplicantName      string `json:"applicantName,omitempty"`
	RightsHolderName   string `json:"rightsHolderName,omitempty"`
	InventorName       string `json:"inventorName,omitempty"`
}

// AnnuityPaymentRow is one row of the annual registration history table.
// Year is kept verbatim, e.g. "10-10".
type AnnuityPaymentRow struct {
	Year       string `json:"year"`
	PaidDate   string `json:"paidDate"`
	PaidAmount string `json:"paidAmount"`
}

// DetailInfoRecord is the registration detail read from patent.go.kr.
type DetailInfoRecord struct {
	RegistrationStatus string             `json:"registrationStatus"`
	ClaimCount         string             `json:"claimCount"`
	ExpirationDate     string             `json:"expirationDate"`
	ValidityStatus     string             `json:"validityStatus"`
	LastRow            *AnnuityPaymentRow `json:"lastRow,omitempty"`
	PrevRow            *AnnuityPaymentRow `json:"prevRow,omitempty"`
}

// CurrentAnnualInfo is derived from the most recent annuity row.
type CurrentAnnualInfo struct {
	AnnualYear string `json:"annualYear"`
	DueDate    string `json:"dueDate"`
	AnnualFee  string `json:"annualFee"`
}

// PreviousAnnualInfo is derived from the second most recent annuity row.
type PreviousAnnualInfo struct {
	AnnualYear    string `json:"annualYear"`
	PaymentDate   string `json:"paymentDate"`
	PaymentAmount string `json:"paymentAmount"`
}

// EnhancedPatentRecord is a search result merged with its registration detail.
type EnhancedPatentRecord struct {
	SearchResultRecord
	RegistrationStatus string              `json:"registrationStatus"`
	ClaimCount         string              `json:"claimCount"`
	ExpirationDate     string              `json:"expirationDate"`
	ValidityStatus     string              `json:"validityStatus"`
	CurrentAnnualInfo  *CurrentAnnualInfo  `json:"currentAnnualInfo,omitempty"`
	PreviousAnnualInfo *PreviousAnnualInfo `json:"previousAnnualInfo,omitempty"`
	IPCCode            string              `json:"ipcCode,omitempty"`
	PublicationDate    string              `json:"publicationDate,omitempty"`
	DetailError        string              `json:"detailError,omitempty"`
}

// PatentBatch is the document produced for one customer run.
type PatentBatch struct {
	CustomerNumber    string                 `json:"customerNumber"`
	ApplicantName     string                 `json:"applicantName"`
	FinalRightsHolder string                 `json:"finalRightsHolder"`
	TotalCount        int                    `json:"totalCount"`
	Patents           []EnhancedPatentRecord `json:"patents"`
	CrawledAt         time.Time              `json:"crawledAt"`
}

// Bibliography holds fields the open API knows that the search cards may lack.
type Bibliography struct {
	ApplicationNumber string
	InventorName      string
	IPCCode           string
	PublicationDate   string
}

// ListSource runs a search query and returns the result cards.
type ListSource interface {
	Search(ctx context.Context, query string) ([]SearchResultRecord, error)
}

// DetailSource looks up registration detail by registration number.
type DetailSource interface {
	Lookup(ctx context.Context, registrationNumber string) (*DetailInfoRecord, error)
}

// BibliographySource fetches bibliographic data by application number.
type BibliographySource interface {
	Bibliography(ctx context.Context, applicationNumber string) (*Bibliography, error)
}

// ElementHandler extracts one value from a selection, "" when not found.
type ElementHandler func(*goquery.Selection) string
