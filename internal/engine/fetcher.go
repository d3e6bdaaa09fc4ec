package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/Veraticus/notecheck/internal/portal"
)

// SessionSource hands out the current session token.
type SessionSource interface {
	Session() (model.Session, error)
}

// Fetcher runs the report search for a date range.
type Fetcher struct {
	searcher portal.ReportSearcher
	sessions SessionSource
	logger   *slog.Logger
}

// NewFetcher creates a fetcher that searches with the session from sessions.
func NewFetcher(searcher portal.ReportSearcher, sessions SessionSource, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		searcher: searcher,
		sessions: sessions,
		logger:   logger,
	}
}

// Fetch issues a single search across all clinicians, locations and
// programs. The portal returns the full result set in one response.
func (f *Fetcher) Fetch(ctx context.Context, r model.DateRange) ([]model.DocumentRecord, error) {
	if err := ValidateRange(r); err != nil {
		return nil, err
	}

	session, err := f.sessions.Session()
	if err != nil {
		return nil, err
	}

	req := portal.SearchRequest{
		StartDate: r.Start.Format(model.DateLayout),
		EndDate:   r.End.Format(model.DateLayout),
	}

	f.logger.Info("Searching reports", "start", req.StartDate, "end", req.EndDate)

	records, err := f.searcher.SearchReports(ctx, session.Token, req)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Report search successful", "records", len(records))
	return records, nil
}

// ValidateRange rejects ranges with a missing bound or an end before the start.
func ValidateRange(r model.DateRange) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", common.ErrInvalidRange)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s", common.ErrInvalidRange,
			r.End.Format(model.DateLayout), r.Start.Format(model.DateLayout))
	}
	return nil
}

// ParseRange parses YYYY-MM-DD bounds in local time and validates them.
func ParseRange(start, end string) (model.DateRange, error) {
	s, err := parseDate(start)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: start date: %v", common.ErrInvalidRange, err)
	}
	e, err := parseDate(end)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("%w: end date: %v", common.ErrInvalidRange, err)
	}

	r := model.DateRange{Start: s, End: e}
	if err := ValidateRange(r); err != nil {
		return model.DateRange{}, err
	}
	return r, nil
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(model.DateLayout, s, time.Local)
}
