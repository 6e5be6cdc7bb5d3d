package service

import (
	"fmt"
	"time"

	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// Caller is the authenticated user on whose behalf an operation runs.
// Handlers build it from verified token claims; services never look up
// session state themselves.
type Caller struct {
	UserID    string
	Role      string
	StationID string
	DriverID  string
}

// IsAdmin admins see every station.
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// IsReviewer managers and admins may decide working hours.
func (c Caller) IsReviewer() bool { return c.Role == model.RoleAdmin || c.Role == model.RoleManager }

var (
	ErrStationRequired = pkgerrors.Invalid("station_id", "station_id is required")
	ErrOutsideStation  = fmt.Errorf("%w: station outside your scope", pkgerrors.ErrForbidden)
)

// resolveStation picks the station an operation is scoped to. Admins must
// name one; everyone else is pinned to their own and may only repeat it.
func resolveStation(c Caller, requested string) (string, error) {
	if c.IsAdmin() {
		if requested == "" {
			return "", ErrStationRequired
		}
		return requested, nil
	}
	if c.StationID == "" {
		return "", ErrOutsideStation
	}
	if requested != "" && requested != c.StationID {
		return "", ErrOutsideStation
	}
	return c.StationID, nil
}

// canAccessStation reports whether c may read or write rows of stationID.
func canAccessStation(c Caller, stationID string) bool {
	return c.IsAdmin() || (c.StationID != "" && c.StationID == stationID)
}

// ── date parsing ──

func parseDateField(field, raw string) (time.Time, error) {
	d, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, pkgerrors.Invalid(field, "must be a date in YYYY-MM-DD format")
	}
	return d, nil
}

// parseMonth parses YYYY-MM into the first and last day of that month.
func parseMonth(raw string) (first, last time.Time, err error) {
	t, perr := time.ParseInLocation("2006-01", raw, time.UTC)
	if perr != nil {
		return time.Time{}, time.Time{}, pkgerrors.Invalid("month", "must be YYYY-MM")
	}
	first = t
	last = t.AddDate(0, 1, -1)
	return first, last, nil
}

func formatDate(t time.Time) string { return t.Format(model.DateLayout) }

func formatTimestamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }
