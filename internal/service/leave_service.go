package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

var (
	ErrLeaveNotFound = pkgerrors.NotFound("leave")
	ErrLeaveOverlap  = pkgerrors.Invalid("start_date", "driver already has leave in this period")
	ErrLeaveRange    = pkgerrors.Invalid("end_date", "must not be before start_date")
)

// leave feed window around today
const (
	feedPastDays   = 90
	feedFutureDays = 365
)

// LeaveService driver absences and the station leave feed
type LeaveService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error)
	List(ctx context.Context, caller Caller, req *dto.LeaveListRequest) ([]dto.LeaveResponse, error)
	Delete(ctx context.Context, caller Caller, id string) error
	// Feed renders the station's leaves as an iCalendar document.
	Feed(ctx context.Context, caller Caller, stationID string) ([]byte, error)
}

type leaveService struct {
	repo     *repository.Repository
	calendar CalendarInvalidator
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewLeaveService creates a LeaveService.
func NewLeaveService(repo *repository.Repository, calendar CalendarInvalidator, loc *time.Location, logger *zap.Logger) LeaveService {
	if loc == nil {
		loc = time.UTC
	}
	return &leaveService{repo: repo, calendar: calendar, loc: loc, now: time.Now, logger: logger}
}

func (s *leaveService) today() time.Time {
	return model.CivilDate(s.now().In(s.loc))
}

func (s *leaveService) Create(ctx context.Context, caller Caller, req *dto.CreateLeaveRequest) (*dto.LeaveResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	if !model.ValidLeaveType(req.LeaveType) {
		return nil, pkgerrors.Invalid("leave_type", "must be paid or sick")
	}
	start, err := parseDateField("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDateField("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, ErrLeaveRange
	}

	driver, err := s.repo.Driver.GetByID(ctx, req.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("load driver failed", zap.String("driver_id", req.DriverID), zap.Error(err))
		return nil, err
	}
	if !canAccessStation(caller, driver.StationID) {
		return nil, ErrOutsideStation
	}

	leave := &model.DriverLeave{
		DriverID:  driver.DriverID,
		StationID: driver.StationID,
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(req.Reason),
	}
	leave.CreatedBy = &caller.UserID
	leave.UpdatedBy = &caller.UserID

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		overlapping, err := tx.Leave.ListOverlapping(ctx, driver.DriverID, start, end)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return ErrLeaveOverlap
		}
		return tx.Leave.Create(ctx, leave)
	})
	if err != nil {
		if !errors.Is(err, ErrLeaveOverlap) {
			s.logger.Error("create leave failed", zap.String("driver_id", driver.DriverID), zap.Error(err))
		}
		return nil, err
	}

	s.invalidateRange(ctx, leave.StationID, start, end)
	leave.Driver = driver
	return toLeaveResponse(leave), nil
}

// invalidateRange drops every cached month the leave touches.
func (s *leaveService) invalidateRange(ctx context.Context, stationID string, start, end time.Time) {
	if s.calendar == nil {
		return
	}
	month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !month.After(end) {
		s.calendar.Invalidate(ctx, stationID, month)
		month = month.AddDate(0, 1, 0)
	}
}

func (s *leaveService) List(ctx context.Context, caller Caller, req *dto.LeaveListRequest) ([]dto.LeaveResponse, error) {
	station, err := resolveStation(caller, req.StationID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	if req.From != "" {
		if from, err = parseDateField("from", req.From); err != nil {
			return nil, err
		}
	}
	if req.To != "" {
		if to, err = parseDateField("to", req.To); err != nil {
			return nil, err
		}
	}
	if to.Before(from) {
		return nil, pkgerrors.Invalid("to", "must not be before from")
	}

	leaves, err := s.repo.Leave.ListByStationAndRange(ctx, station, from, to)
	if err != nil {
		s.logger.Error("list leaves failed", zap.String("station_id", station), zap.Error(err))
		return nil, err
	}

	out := make([]dto.LeaveResponse, 0, len(leaves))
	for i := range leaves {
		out = append(out, *toLeaveResponse(&leaves[i]))
	}
	return out, nil
}

func (s *leaveService) Delete(ctx context.Context, caller Caller, id string) error {
	if !caller.IsReviewer() {
		return pkgerrors.ErrForbidden
	}
	leave, err := s.repo.Leave.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaveNotFound
		}
		s.logger.Error("load leave failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	if !canAccessStation(caller, leave.StationID) {
		return ErrOutsideStation
	}

	if err := s.repo.Leave.Delete(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaveNotFound
		}
		s.logger.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return err
	}
	s.invalidateRange(ctx, leave.StationID, leave.StartDate, leave.EndDate)
	return nil
}

func (s *leaveService) Feed(ctx context.Context, caller Caller, stationID string) ([]byte, error) {
	station, err := resolveStation(caller, stationID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	leaves, err := s.repo.Leave.ListByStationAndRange(ctx, station,
		today.AddDate(0, 0, -feedPastDays), today.AddDate(0, 0, feedFutureDays))
	if err != nil {
		s.logger.Error("load leave feed failed", zap.String("station_id", station), zap.Error(err))
		return nil, err
	}
	return []byte(renderLeaveFeed(station, leaves, s.now().UTC())), nil
}

// renderLeaveFeed one all-day VEVENT per leave. DTEND is exclusive, so it
// is the day after the last day of leave.
func renderLeaveFeed(stationID string, leaves []model.DriverLeave, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//fleetdesk//leave feed//EN")
	cal.SetXWRCalName("Driver leave " + stationID)

	for i := range leaves {
		l := &leaves[i]
		ev := cal.AddEvent(l.LeaveID + "@fleetdesk")
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(l.StartDate)
		ev.SetAllDayEndAt(l.EndDate.AddDate(0, 0, 1))
		ev.SetSummary(leaveSummary(l))
		if l.Reason != "" {
			ev.SetDescription(l.Reason)
		}
	}
	return cal.Serialize()
}

func leaveSummary(l *model.DriverLeave) string {
	name := l.DriverID
	if l.Driver != nil {
		name = l.Driver.FullName()
	}
	return fmt.Sprintf("%s – %s leave", name, l.LeaveType)
}

func toLeaveResponse(l *model.DriverLeave) *dto.LeaveResponse {
	resp := &dto.LeaveResponse{
		ID:        l.LeaveID,
		DriverID:  l.DriverID,
		StationID: l.StationID,
		LeaveType: l.LeaveType,
		StartDate: formatDate(l.StartDate),
		EndDate:   formatDate(l.EndDate),
		Reason:    l.Reason,
		CreatedAt: formatTimestamp(l.CreatedAt),
	}
	if l.Driver != nil {
		resp.Driver = toDriverBrief(l.Driver)
	}
	return resp
}
