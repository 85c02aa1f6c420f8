package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fenilmodi00/sebi-ipo-api/database"
	"github.com/fenilmodi00/sebi-ipo-api/models"
	"github.com/fenilmodi00/sebi-ipo-api/shared"
	"github.com/sirupsen/logrus"
)

const filingColumns = "id, filing_date, company_name, pdf_urls"

// FilingService reads SEBI IPO filing records. Every public method acquires
// one connection at the top and releases it on all paths, so each API
// request costs exactly one checkout from the pool.
type FilingService struct {
	Store *database.Store
}

func NewFilingService(store *database.Store) *FilingService {
	return &FilingService{Store: store}
}

// ListFilings returns the total row count matching the filters and one page
// of rows, newest first. Count and page run on the same connection but not
// in a transaction, so the total can drift against a concurrent writer.
func (s *FilingService) ListFilings(ctx context.Context, company, date string, limit, offset int) (int, []models.Filing, error) {
	conn, err := s.Store.Acquire(ctx)
	if err != nil {
		return 0, nil, shared.NewConnectionError("list_filings", err)
	}
	defer conn.Release()

	filters := database.FilingFilters(company, date)
	where, args := filters.Clause()

	var total int
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM ipos"+where, args...).Scan(&total); err != nil {
		return 0, nil, shared.NewQueryError("count_filings", err)
	}

	query := "SELECT " + filingColumns + " FROM ipos" + where + " ORDER BY id DESC LIMIT ? OFFSET ?"
	rows, err := conn.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return 0, nil, shared.NewQueryError("list_filings", err)
	}
	defer rows.Close()

	filings, err := scanFilings(rows)
	if err != nil {
		return 0, nil, shared.NewQueryError("list_filings", err)
	}

	logrus.WithFields(logrus.Fields{
		"total":   total,
		"rows":    len(filings),
		"limit":   limit,
		"offset":  offset,
		"company": company,
		"date":    date,
	}).Info("Fetched IPO filings")

	return total, filings, nil
}

// GetFilingByID returns one record, or nil when the id does not exist.
func (s *FilingService) GetFilingByID(ctx context.Context, id int64) (*models.Filing, error) {
	conn, err := s.Store.Acquire(ctx)
	if err != nil {
		return nil, shared.NewConnectionError("get_filing", err)
	}
	defer conn.Release()

	var f models.Filing
	row := conn.QueryRowContext(ctx, "SELECT "+filingColumns+" FROM ipos WHERE id = ?", id)
	if err := row.Scan(&f.ID, &f.FilingDate, &f.CompanyName, &f.PDFURLs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, shared.NewQueryError("get_filing", err)
	}
	return &f, nil
}

// LatestFilings returns the newest limit rows, unfiltered.
func (s *FilingService) LatestFilings(ctx context.Context, limit int) ([]models.Filing, error) {
	conn, err := s.Store.Acquire(ctx)
	if err != nil {
		return nil, shared.NewConnectionError("latest_filings", err)
	}
	defer conn.Release()

	rows, err := conn.QueryContext(ctx, "SELECT "+filingColumns+" FROM ipos ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, shared.NewQueryError("latest_filings", err)
	}
	defer rows.Close()

	filings, err := scanFilings(rows)
	if err != nil {
		return nil, shared.NewQueryError("latest_filings", err)
	}

	logrus.WithFields(logrus.Fields{
		"rows":  len(filings),
		"limit": limit,
	}).Info("Fetched latest IPO filings")

	return filings, nil
}

// scanFilings drains the result set. Returns an empty (non-nil) slice for
// zero rows so the JSON layer renders [] rather than null.
func scanFilings(rows *sql.Rows) ([]models.Filing, error) {
	filings := []models.Filing{}
	for rows.Next() {
		var f models.Filing
		if err := rows.Scan(&f.ID, &f.FilingDate, &f.CompanyName, &f.PDFURLs); err != nil {
			return nil, err
		}
		filings = append(filings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return filings, nil
}
