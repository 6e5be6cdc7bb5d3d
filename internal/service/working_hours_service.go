package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// ── working-hours errors ──

var (
	ErrWorkingHoursNotFound = pkgerrors.NotFound("working hours record")
	ErrNotPending           = fmt.Errorf("%w: record has already been decided", pkgerrors.ErrInvalidState)
	ErrNotADriver           = fmt.Errorf("%w: only driver accounts can submit working hours", pkgerrors.ErrForbidden)
	ErrReasonRequired       = pkgerrors.Invalid("reason", "a rejection reason is required")
	ErrFutureWorkDate       = pkgerrors.Invalid("work_date", "must not be in the future")
	ErrKmNotIncreasing      = pkgerrors.Invalid("km_end", "must be greater than km_start")
)

// QueueWorkingHoursDecided carries WorkingHoursDecidedEvent messages.
const QueueWorkingHoursDecided = "working_hours.decided"

// WorkingHoursDecidedEvent is published after an approve or reject commits.
type WorkingHoursDecidedEvent struct {
	WorkingHoursID string    `json:"working_hours_id"`
	DriverID       string    `json:"driver_id"`
	StationID      string    `json:"station_id"`
	WorkDate       string    `json:"work_date"`
	Status         string    `json:"status"`
	TotalMinutes   int       `json:"total_minutes"`
	KmTotal        int       `json:"km_total"`
	DecidedBy      string    `json:"decided_by"`
	DecidedAt      time.Time `json:"decided_at"`
	EditCount      int       `json:"edit_count"`
}

// EventPublisher sends an event to a named queue.
type EventPublisher interface {
	Publish(ctx context.Context, queue string, v any) error
}

// WorkingHoursService submission, review and coverage reports of driver
// working hours.
type WorkingHoursService interface {
	Submit(ctx context.Context, caller Caller, req *dto.SubmitWorkingHoursRequest) (*dto.WorkingHoursResponse, error)
	Approve(ctx context.Context, caller Caller, id string, req *dto.ApproveWorkingHoursRequest) (*dto.WorkingHoursResponse, error)
	Reject(ctx context.Context, caller Caller, id string, reason string) (*dto.WorkingHoursResponse, error)
	Get(ctx context.Context, caller Caller, id string) (*dto.WorkingHoursResponse, error)
	ListByDate(ctx context.Context, caller Caller, stationID, date string) ([]dto.WorkingHoursResponse, error)
	ListMine(ctx context.Context, caller Caller, month string) ([]dto.WorkingHoursResponse, error)
	ListEdits(ctx context.Context, caller Caller, id string) ([]dto.WorkingHoursEditResponse, error)
	FindMissingSubmissions(ctx context.Context, caller Caller, stationID, date string) ([]dto.DriverBrief, error)
	DailySummary(ctx context.Context, caller Caller, stationID, date string) (*dto.DailySummaryResponse, error)
}

// WorkingHoursOptions tunables of the workflow.
type WorkingHoursOptions struct {
	// Location decides which calendar day "today" is.
	Location *time.Location
	// AllowResubmitAfterRejection lets a driver submit again for a date
	// whose every record was rejected.
	AllowResubmitAfterRejection bool
	// Now defaults to time.Now.
	Now func() time.Time
}

type workingHoursService struct {
	repo     *repository.Repository
	calendar CalendarInvalidator
	events   EventPublisher
	opts     WorkingHoursOptions
	logger   *zap.Logger
}

// NewWorkingHoursService events may be nil.
func NewWorkingHoursService(
	repo *repository.Repository,
	calendar CalendarInvalidator,
	events EventPublisher,
	opts WorkingHoursOptions,
	logger *zap.Logger,
) WorkingHoursService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &workingHoursService{repo: repo, calendar: calendar, events: events, opts: opts, logger: logger}
}

func (s *workingHoursService) today() time.Time {
	return model.CivilDate(s.opts.Now().In(s.opts.Location))
}

// ════════════════════════════════════════════════════════════
// Submit
// ════════════════════════════════════════════════════════════

// shiftInput parsed and validated submission form
type shiftInput struct {
	workDate   time.Time
	tourNumber string
	vanID      *string
	kmStart    int
	kmEnd      int
	times      [5]model.ClockTime // in shiftTimeFields order
}

// shiftTimeFields the five clock fields of a shift, in form order
var shiftTimeFields = [5]string{"scanner_login", "depot_departure", "first_delivery", "last_delivery", "depot_return"}

func (s *workingHoursService) parseSubmission(req *dto.SubmitWorkingHoursRequest) (*shiftInput, error) {
	in := &shiftInput{}

	d, err := parseDateField("work_date", strings.TrimSpace(req.WorkDate))
	if err != nil {
		return nil, err
	}
	if d.After(s.today()) {
		return nil, ErrFutureWorkDate
	}
	in.workDate = d

	if in.tourNumber, err = parseTourNumber(req.TourNumber); err != nil {
		return nil, err
	}

	if req.KmStart == nil || req.KmEnd == nil {
		return nil, pkgerrors.Invalid("km_start", "km_start and km_end are required")
	}
	if *req.KmStart < 0 {
		return nil, pkgerrors.Invalid("km_start", "must not be negative")
	}
	if *req.KmEnd <= *req.KmStart {
		return nil, ErrKmNotIncreasing
	}
	in.kmStart, in.kmEnd = *req.KmStart, *req.KmEnd

	raw := [5]string{req.ScannerLogin, req.DepotDeparture, req.FirstDelivery, req.LastDelivery, req.DepotReturn}
	for i, field := range shiftTimeFields {
		c, err := parseClockField(field, raw[i])
		if err != nil {
			return nil, err
		}
		in.times[i] = c
	}

	if v := strings.TrimSpace(req.VanID); v != "" {
		in.vanID = &v
	}
	return in, nil
}

func parseTourNumber(raw string) (string, error) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", pkgerrors.Invalid("tour_number", "is required")
	}
	if len([]rune(t)) > 7 {
		return "", pkgerrors.Invalid("tour_number", "must be at most 7 characters")
	}
	return t, nil
}

func parseClockField(field, raw string) (model.ClockTime, error) {
	c, err := model.ParseClockTime(raw)
	if err != nil {
		return 0, pkgerrors.Invalid(field, "must be a time in HH:MM format")
	}
	return c, nil
}

func parseKmField(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, pkgerrors.Invalid(field, "must be a non-negative whole number")
	}
	return n, nil
}

func (s *workingHoursService) Submit(ctx context.Context, caller Caller, req *dto.SubmitWorkingHoursRequest) (*dto.WorkingHoursResponse, error) {
	if caller.Role != model.RoleDriver || caller.DriverID == "" {
		return nil, ErrNotADriver
	}

	in, err := s.parseSubmission(req)
	if err != nil {
		return nil, err
	}

	shift, err := ComputeShift(in.workDate, in.times[0], in.times[4])
	if err != nil {
		return nil, err
	}

	driver, err := s.repo.Driver.GetByID(ctx, caller.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("load driver failed", zap.String("driver_id", caller.DriverID), zap.Error(err))
		return nil, err
	}
	if !driver.IsActive {
		return nil, ErrDriverInactive
	}

	if in.vanID != nil {
		van, err := s.repo.Van.GetByID(ctx, *in.vanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Invalid("van_id", "unknown van")
			}
			s.logger.Error("load van failed", zap.String("van_id", *in.vanID), zap.Error(err))
			return nil, err
		}
		if van.StationID != driver.StationID {
			return nil, pkgerrors.Invalid("van_id", "van belongs to another station")
		}
	}

	rec := &model.WorkingHoursRecord{
		DriverID:       driver.DriverID,
		StationID:      driver.StationID,
		VanID:          in.vanID,
		WorkDate:       in.workDate,
		TourNumber:     in.tourNumber,
		KmStart:        in.kmStart,
		KmEnd:          in.kmEnd,
		KmTotal:        ComputeDistance(in.kmStart, in.kmEnd),
		ScannerLogin:   in.times[0],
		DepotDeparture: in.times[1],
		FirstDelivery:  in.times[2],
		LastDelivery:   in.times[3],
		DepotReturn:    in.times[4],
		BreakMinutes:   shift.BreakMinutes,
		TotalMinutes:   shift.TotalMinutes,
		Status:         model.WorkingHoursPending,
	}
	rec.CreatedBy = &caller.UserID
	rec.Version = 1

	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		existing, err := tx.WorkingHours.ListByDriverAndDate(ctx, rec.DriverID, rec.WorkDate)
		if err != nil {
			return err
		}
		if s.blocksSubmission(existing) {
			return pkgerrors.ErrDuplicateSubmission
		}
		if err := tx.WorkingHours.Create(ctx, rec); err != nil {
			// the partial unique index is the authoritative guard
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.ErrDuplicateSubmission
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, pkgerrors.ErrDuplicateSubmission) {
			s.logger.Error("submit working hours failed",
				zap.String("driver_id", rec.DriverID),
				zap.String("work_date", formatDate(rec.WorkDate)),
				zap.Error(err))
		}
		return nil, err
	}

	s.calendar.Invalidate(ctx, rec.StationID, rec.WorkDate)
	rec.Driver = driver
	return toWorkingHoursResponse(rec), nil
}

// blocksSubmission reports whether existing records for the same driver and
// date forbid a new one.
func (s *workingHoursService) blocksSubmission(existing []model.WorkingHoursRecord) bool {
	if !s.opts.AllowResubmitAfterRejection {
		return len(existing) > 0
	}
	for i := range existing {
		if existing[i].Status != model.WorkingHoursRejected {
			return true
		}
	}
	return false
}

// ════════════════════════════════════════════════════════════
// Approve
// ════════════════════════════════════════════════════════════

// fieldChange one applied reviewer edit
type fieldChange struct {
	field    string
	oldValue string
	newValue string
}

// applyEdit parses raw for field and writes it into rec. changed is false
// when the parsed value equals the stored one, whatever its spelling.
func applyEdit(rec *model.WorkingHoursRecord, field, raw string) (ch fieldChange, changed bool, err error) {
	ch.field = field

	if c := clockFieldOf(rec, field); c != nil {
		v, err := parseClockField(field, raw)
		if err != nil {
			return ch, false, err
		}
		if v == *c {
			return ch, false, nil
		}
		ch.oldValue, ch.newValue = c.String(), v.String()
		*c = v
		return ch, true, nil
	}

	if k := kmFieldOf(rec, field); k != nil {
		v, err := parseKmField(field, raw)
		if err != nil {
			return ch, false, err
		}
		if v == *k {
			return ch, false, nil
		}
		ch.oldValue, ch.newValue = strconv.Itoa(*k), strconv.Itoa(v)
		*k = v
		return ch, true, nil
	}

	if field == "tour_number" {
		v, err := parseTourNumber(raw)
		if err != nil {
			return ch, false, err
		}
		if v == rec.TourNumber {
			return ch, false, nil
		}
		ch.oldValue, ch.newValue = rec.TourNumber, v
		rec.TourNumber = v
		return ch, true, nil
	}

	return ch, false, pkgerrors.Invalid(field, "field cannot be edited")
}

func clockFieldOf(rec *model.WorkingHoursRecord, field string) *model.ClockTime {
	switch field {
	case "scanner_login":
		return &rec.ScannerLogin
	case "depot_departure":
		return &rec.DepotDeparture
	case "first_delivery":
		return &rec.FirstDelivery
	case "last_delivery":
		return &rec.LastDelivery
	case "depot_return":
		return &rec.DepotReturn
	}
	return nil
}

func kmFieldOf(rec *model.WorkingHoursRecord, field string) *int {
	switch field {
	case "km_start":
		return &rec.KmStart
	case "km_end":
		return &rec.KmEnd
	}
	return nil
}

func (s *workingHoursService) Approve(ctx context.Context, caller Caller, id string, req *dto.ApproveWorkingHoursRequest) (*dto.WorkingHoursResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	if req == nil {
		req = &dto.ApproveWorkingHoursRequest{}
	}

	var (
		rec     *model.WorkingHoursRecord
		changes []fieldChange
	)
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		rec, err = s.loadPendingForDecision(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		seen := make(map[string]bool, len(req.Edits))
		timesChanged, kmChanged := false, false
		for _, e := range req.Edits {
			field := strings.TrimSpace(e.Field)
			if seen[field] {
				return pkgerrors.Invalid(field, "field edited more than once")
			}
			seen[field] = true

			ch, changed, err := applyEdit(rec, field, e.Value)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			switch {
			case clockFieldOf(rec, field) != nil:
				timesChanged = true
			case kmFieldOf(rec, field) != nil:
				kmChanged = true
			}

			reason := strings.TrimSpace(e.Reason)
			if reason == "" {
				reason = strings.TrimSpace(req.Reason)
			}
			edit := &model.WorkingHoursEdit{
				WorkingHoursID: rec.WorkingHoursID,
				EditorID:       caller.UserID,
				FieldName:      ch.field,
				OldValue:       ch.oldValue,
				NewValue:       ch.newValue,
				Reason:         reason,
			}
			if err := tx.WorkingHoursEdit.Create(ctx, edit); err != nil {
				return err
			}
			rec.Edits = append(rec.Edits, edit)
			changes = append(changes, ch)
		}

		if kmChanged {
			if rec.KmEnd <= rec.KmStart {
				return ErrKmNotIncreasing
			}
			rec.KmTotal = ComputeDistance(rec.KmStart, rec.KmEnd)
		}
		if timesChanged {
			shift, err := ComputeShift(rec.WorkDate, rec.ScannerLogin, rec.DepotReturn)
			if err != nil {
				return err
			}
			rec.BreakMinutes, rec.TotalMinutes = shift.BreakMinutes, shift.TotalMinutes
		}

		now := s.opts.Now().UTC()
		rec.Status = model.WorkingHoursApproved
		rec.ApprovedBy, rec.ApprovedAt = &caller.UserID, &now
		rec.DecidedBy, rec.DecidedAt = &caller.UserID, &now
		rec.UpdatedBy = &caller.UserID
		if err := tx.WorkingHours.Update(ctx, rec); err != nil {
			return decisionUpdateError(err)
		}

		if rec.VanID != nil {
			if err := tx.Van.RaiseMileage(ctx, *rec.VanID, rec.KmEnd); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logInfraError("approve working hours failed", id, err)
		return nil, err
	}

	s.afterDecision(ctx, rec, len(changes))
	return toWorkingHoursResponse(rec), nil
}

// ════════════════════════════════════════════════════════════
// Reject
// ════════════════════════════════════════════════════════════

func (s *workingHoursService) Reject(ctx context.Context, caller Caller, id string, reason string) (*dto.WorkingHoursResponse, error) {
	if !caller.IsReviewer() {
		return nil, pkgerrors.ErrForbidden
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}

	var rec *model.WorkingHoursRecord
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		var err error
		rec, err = s.loadPendingForDecision(ctx, tx, caller, id)
		if err != nil {
			return err
		}

		now := s.opts.Now().UTC()
		rec.Status = model.WorkingHoursRejected
		rec.RejectionReason = &reason
		rec.DecidedBy, rec.DecidedAt = &caller.UserID, &now
		rec.UpdatedBy = &caller.UserID
		if err := tx.WorkingHours.Update(ctx, rec); err != nil {
			return decisionUpdateError(err)
		}
		return nil
	})
	if err != nil {
		s.logInfraError("reject working hours failed", id, err)
		return nil, err
	}

	s.afterDecision(ctx, rec, 0)
	return toWorkingHoursResponse(rec), nil
}

func (s *workingHoursService) loadPendingForDecision(ctx context.Context, tx *repository.Repository, caller Caller, id string) (*model.WorkingHoursRecord, error) {
	rec, err := tx.WorkingHours.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkingHoursNotFound
		}
		return nil, err
	}
	if !canAccessStation(caller, rec.StationID) {
		return nil, ErrOutsideStation
	}
	if !rec.IsPending() {
		return nil, ErrNotPending
	}
	return rec, nil
}

// decisionUpdateError a lost optimistic-lock race means another reviewer
// decided the record first.
func decisionUpdateError(err error) error {
	if errors.Is(err, pkgerrors.ErrOptimisticLock) {
		return ErrNotPending
	}
	return err
}

func (s *workingHoursService) afterDecision(ctx context.Context, rec *model.WorkingHoursRecord, edits int) {
	s.calendar.Invalidate(ctx, rec.StationID, rec.WorkDate)

	if s.events == nil {
		return
	}
	ev := WorkingHoursDecidedEvent{
		WorkingHoursID: rec.WorkingHoursID,
		DriverID:       rec.DriverID,
		StationID:      rec.StationID,
		WorkDate:       formatDate(rec.WorkDate),
		Status:         rec.Status,
		TotalMinutes:   rec.TotalMinutes,
		KmTotal:        rec.KmTotal,
		EditCount:      edits,
	}
	if rec.DecidedBy != nil {
		ev.DecidedBy = *rec.DecidedBy
	}
	if rec.DecidedAt != nil {
		ev.DecidedAt = *rec.DecidedAt
	}
	if err := s.events.Publish(ctx, QueueWorkingHoursDecided, ev); err != nil {
		s.logger.Warn("publish decision event failed",
			zap.String("working_hours_id", rec.WorkingHoursID),
			zap.Error(err))
	}
}

// logInfraError logs err unless it is one of the business error kinds.
func (s *workingHoursService) logInfraError(msg, id string, err error) {
	if isBusinessError(err) {
		return
	}
	s.logger.Error(msg, zap.String("working_hours_id", id), zap.Error(err))
}

func isBusinessError(err error) bool {
	return errors.Is(err, pkgerrors.ErrValidation) ||
		errors.Is(err, pkgerrors.ErrNotFound) ||
		errors.Is(err, pkgerrors.ErrInvalidState) ||
		errors.Is(err, pkgerrors.ErrForbidden) ||
		errors.Is(err, pkgerrors.ErrDuplicateSubmission)
}

// ════════════════════════════════════════════════════════════
// Reads
// ════════════════════════════════════════════════════════════

func (s *workingHoursService) Get(ctx context.Context, caller Caller, id string) (*dto.WorkingHoursResponse, error) {
	rec, err := s.repo.WorkingHours.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkingHoursNotFound
		}
		s.logger.Error("load working hours failed", zap.String("working_hours_id", id), zap.Error(err))
		return nil, err
	}

	switch caller.Role {
	case model.RoleDriver:
		if rec.DriverID != caller.DriverID {
			return nil, ErrWorkingHoursNotFound
		}
	default:
		if !canAccessStation(caller, rec.StationID) {
			return nil, ErrOutsideStation
		}
	}
	return toWorkingHoursResponse(rec), nil
}

func (s *workingHoursService) ListByDate(ctx context.Context, caller Caller, stationID, date string) ([]dto.WorkingHoursResponse, error) {
	station, err := resolveStation(caller, stationID)
	if err != nil {
		return nil, err
	}
	day, err := parseDateField("date", date)
	if err != nil {
		return nil, err
	}

	recs, err := s.repo.WorkingHours.ListByStationAndDate(ctx, station, day)
	if err != nil {
		s.logger.Error("list working hours failed", zap.String("station_id", station), zap.Error(err))
		return nil, err
	}
	return toWorkingHoursResponses(recs), nil
}

func (s *workingHoursService) ListMine(ctx context.Context, caller Caller, month string) ([]dto.WorkingHoursResponse, error) {
	if caller.DriverID == "" {
		return nil, ErrNotADriver
	}
	first, last, err := parseMonth(month)
	if err != nil {
		return nil, err
	}
	recs, err := s.repo.WorkingHours.ListByDriverAndRange(ctx, caller.DriverID, first, last)
	if err != nil {
		s.logger.Error("list own working hours failed", zap.String("driver_id", caller.DriverID), zap.Error(err))
		return nil, err
	}
	return toWorkingHoursResponses(recs), nil
}

// ListEdits audit trail of one record, oldest first.
func (s *workingHoursService) ListEdits(ctx context.Context, caller Caller, id string) ([]dto.WorkingHoursEditResponse, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	edits, err := s.repo.WorkingHoursEdit.ListByRecord(ctx, id)
	if err != nil {
		s.logger.Error("list edits failed", zap.String("working_hours_id", id), zap.Error(err))
		return nil, err
	}
	out := make([]dto.WorkingHoursEditResponse, 0, len(edits))
	for i := range edits {
		out = append(out, toEditResponse(&edits[i]))
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════
// Coverage reports
// ════════════════════════════════════════════════════════════

// dayCoverage who submitted, who is on leave and who is missing on one day
type dayCoverage struct {
	drivers  []model.Driver
	records  []model.WorkingHoursRecord
	onLeave  map[string]bool
	missing  []model.Driver
	evaluate bool // false for future days
}

// coverage builds the coverage of one station-day. Future days report
// nobody missing.
func coverage(drivers []model.Driver, records []model.WorkingHoursRecord, leaves []model.DriverLeave, day, today time.Time) dayCoverage {
	cov := dayCoverage{drivers: drivers, records: records, onLeave: make(map[string]bool), evaluate: !day.After(today)}

	active := make(map[string]bool, len(drivers))
	for i := range drivers {
		active[drivers[i].DriverID] = true
	}
	for i := range leaves {
		if leaves[i].Covers(day) && active[leaves[i].DriverID] {
			cov.onLeave[leaves[i].DriverID] = true
		}
	}
	if !cov.evaluate {
		return cov
	}

	// any record counts, whatever its status
	submitted := make(map[string]bool, len(records))
	for i := range records {
		submitted[records[i].DriverID] = true
	}
	for _, d := range drivers {
		if !submitted[d.DriverID] && !cov.onLeave[d.DriverID] {
			cov.missing = append(cov.missing, d)
		}
	}
	return cov
}

func (s *workingHoursService) loadCoverage(ctx context.Context, station string, day time.Time) (dayCoverage, error) {
	drivers, err := s.repo.Driver.ListByStation(ctx, station)
	if err != nil {
		return dayCoverage{}, err
	}
	records, err := s.repo.WorkingHours.ListByStationAndDate(ctx, station, day)
	if err != nil {
		return dayCoverage{}, err
	}
	leaves, err := s.repo.Leave.ListByStationAndDate(ctx, station, day)
	if err != nil {
		return dayCoverage{}, err
	}
	return coverage(drivers, records, leaves, day, s.today()), nil
}

func (s *workingHoursService) FindMissingSubmissions(ctx context.Context, caller Caller, stationID, date string) ([]dto.DriverBrief, error) {
	station, err := resolveStation(caller, stationID)
	if err != nil {
		return nil, err
	}
	day, err := parseDateField("date", date)
	if err != nil {
		return nil, err
	}
	if day.After(s.today()) {
		return []dto.DriverBrief{}, nil
	}

	cov, err := s.loadCoverage(ctx, station, day)
	if err != nil {
		s.logger.Error("missing submissions query failed", zap.String("station_id", station), zap.Error(err))
		return nil, err
	}

	out := make([]dto.DriverBrief, 0, len(cov.missing))
	for i := range cov.missing {
		out = append(out, *toDriverBrief(&cov.missing[i]))
	}
	return out, nil
}

func (s *workingHoursService) DailySummary(ctx context.Context, caller Caller, stationID, date string) (*dto.DailySummaryResponse, error) {
	station, err := resolveStation(caller, stationID)
	if err != nil {
		return nil, err
	}
	day, err := parseDateField("date", date)
	if err != nil {
		return nil, err
	}

	cov, err := s.loadCoverage(ctx, station, day)
	if err != nil {
		s.logger.Error("daily summary query failed", zap.String("station_id", station), zap.Error(err))
		return nil, err
	}

	sum := &dto.DailySummaryResponse{
		StationID: station,
		Date:      formatDate(day),
		Drivers:   len(cov.drivers),
		Submitted: len(cov.records),
		Missing:   len(cov.missing),
		OnLeave:   len(cov.onLeave),
	}
	for i := range cov.records {
		switch cov.records[i].Status {
		case model.WorkingHoursPending:
			sum.Pending++
		case model.WorkingHoursApproved:
			sum.Approved++
		case model.WorkingHoursRejected:
			sum.Rejected++
		}
	}
	return sum, nil
}

// ── conversion ──

func toWorkingHoursResponse(rec *model.WorkingHoursRecord) *dto.WorkingHoursResponse {
	resp := &dto.WorkingHoursResponse{
		ID:              rec.WorkingHoursID,
		DriverID:        rec.DriverID,
		StationID:       rec.StationID,
		WorkDate:        formatDate(rec.WorkDate),
		TourNumber:      rec.TourNumber,
		KmStart:         rec.KmStart,
		KmEnd:           rec.KmEnd,
		KmTotal:         rec.KmTotal,
		ScannerLogin:    rec.ScannerLogin.String(),
		DepotDeparture:  rec.DepotDeparture.String(),
		FirstDelivery:   rec.FirstDelivery.String(),
		LastDelivery:    rec.LastDelivery.String(),
		DepotReturn:     rec.DepotReturn.String(),
		BreakMinutes:    rec.BreakMinutes,
		TotalMinutes:    rec.TotalMinutes,
		TotalHours:      FormatMinutes(rec.TotalMinutes),
		Status:          rec.Status,
		RejectionReason: rec.RejectionReason,
		ApprovedBy:      rec.ApprovedBy,
		CreatedAt:       formatTimestamp(rec.CreatedAt),
	}
	if rec.ApprovedAt != nil {
		at := formatTimestamp(*rec.ApprovedAt)
		resp.ApprovedAt = &at
	}
	if rec.Driver != nil {
		resp.Driver = toDriverBrief(rec.Driver)
	}
	if rec.Van != nil {
		resp.Van = &dto.VanBrief{ID: rec.Van.VanID, PlateNumber: rec.Van.PlateNumber}
	}
	for _, e := range rec.Edits {
		resp.Edits = append(resp.Edits, toEditResponse(e))
	}
	return resp
}

func toEditResponse(e *model.WorkingHoursEdit) dto.WorkingHoursEditResponse {
	return dto.WorkingHoursEditResponse{
		Field:     e.FieldName,
		OldValue:  e.OldValue,
		NewValue:  e.NewValue,
		Reason:    e.Reason,
		EditorID:  e.EditorID,
		CreatedAt: formatTimestamp(e.CreatedAt),
	}
}

func toWorkingHoursResponses(recs []model.WorkingHoursRecord) []dto.WorkingHoursResponse {
	out := make([]dto.WorkingHoursResponse, 0, len(recs))
	for i := range recs {
		out = append(out, *toWorkingHoursResponse(&recs[i]))
	}
	return out
}

func toDriverBrief(d *model.Driver) *dto.DriverBrief {
	return &dto.DriverBrief{ID: d.DriverID, Name: d.FullName(), PersonnelNo: d.PersonnelNo}
}
