package service

import (
	"strings"
	"time"

	"github.com/deskflow/helpdesk-api/internal/auth"
	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/repository"
	apperrors "github.com/deskflow/helpdesk-api/pkg/util/errorutil"
)

// TicketQueryParams are the raw listTickets arguments. Nil means not supplied.
type TicketQueryParams struct {
	Date      *string
	StartDate *string
	EndDate   *string
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// BuildTicketFilter turns the caller and the raw arguments into a repository filter.
// ADMIN sees every ticket, anyone else only their own. A supplied startDate or endDate
// replaces the single-day window of date entirely; each bound is inclusive.
func BuildTicketFilter(actor domain.Actor, params TicketQueryParams, loc *time.Location) (repository.TicketFilter, error) {
	if loc == nil {
		loc = time.Local
	}

	var filter repository.TicketFilter
	if !auth.CanViewAllTickets(actor) {
		authorID := actor.ID
		filter.AuthorID = &authorID
	}

	if params.Date != nil {
		day, err := parseDate(*params.Date, loc)
		if err != nil {
			return repository.TicketFilter{}, err
		}
		from, to := dayBounds(day, loc)
		filter.CreatedFrom, filter.CreatedTo = &from, &to
	}

	if params.StartDate == nil && params.EndDate == nil {
		return filter, nil
	}
	filter.CreatedFrom, filter.CreatedTo = nil, nil
	if params.StartDate != nil {
		start, err := parseDate(*params.StartDate, loc)
		if err != nil {
			return repository.TicketFilter{}, err
		}
		filter.CreatedFrom = &start
	}
	if params.EndDate != nil {
		end, err := parseDate(*params.EndDate, loc)
		if err != nil {
			return repository.TicketFilter{}, err
		}
		filter.CreatedTo = &end
	}
	return filter, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = restoreOffsetSign(strings.TrimSpace(raw))
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.NewValidationError("invalid date format", map[string]any{"value": raw})
}

// restoreOffsetSign undoes query decoding of an unescaped "+hh:mm" offset, which
// arrives as " hh:mm".
func restoreOffsetSign(raw string) string {
	n := len(raw)
	if n < len("2006-01-02T15:04:05 07:00") || raw[n-6] != ' ' || raw[n-3] != ':' {
		return raw
	}
	for _, i := range []int{n - 5, n - 4, n - 2, n - 1} {
		if raw[i] < '0' || raw[i] > '9' {
			return raw
		}
	}
	return raw[:n-6] + "+" + raw[n-5:]
}

// dayBounds returns the first and last millisecond of t's calendar day in loc.
func dayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := t.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}
