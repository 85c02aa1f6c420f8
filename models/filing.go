package models

// Filing is one SEBI IPO filing row from the externally managed `ipos`
// table. The table is written by a separate collection pipeline; this API
// only reads it.
//
// The pdf_urls column may hold one URL or several in a single string. It
// rides through verbatim, with no splitting or parsing, and is exposed
// under the singular name pdf_url.
type Filing struct {
	ID          int64  `json:"-"`
	FilingDate  string `json:"filing_date"`
	CompanyName string `json:"company_name"`
	PDFURLs     string `json:"pdf_url"`
}
