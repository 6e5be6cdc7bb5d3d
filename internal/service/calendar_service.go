package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	"fleetdesk/backend/pkg/redis"
)

// Cache JSON key/value store. *redis.Client satisfies it.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CalendarInvalidator drops the cached month containing day.
type CalendarInvalidator interface {
	Invalidate(ctx context.Context, stationID string, day time.Time)
}

// CalendarService monthly review calendar
type CalendarService interface {
	CalendarInvalidator
	Month(ctx context.Context, caller Caller, stationID, month string) (*dto.CalendarResponse, error)
}

type calendarService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewCalendarService cache may be nil, every read then hits the database.
func NewCalendarService(repo *repository.Repository, cache Cache, ttl time.Duration, loc *time.Location, logger *zap.Logger) CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &calendarService{repo: repo, cache: cache, ttl: ttl, loc: loc, now: time.Now, logger: logger}
}

func calendarKey(stationID string, month time.Time) string {
	return fmt.Sprintf("calendar:%s:%s", stationID, month.Format("2006-01"))
}

func (s *calendarService) Invalidate(ctx context.Context, stationID string, day time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, calendarKey(stationID, day)); err != nil {
		s.logger.Warn("calendar cache invalidation failed",
			zap.String("station_id", stationID),
			zap.String("month", day.Format("2006-01")),
			zap.Error(err))
	}
}

func (s *calendarService) Month(ctx context.Context, caller Caller, stationID, month string) (*dto.CalendarResponse, error) {
	station, err := resolveStation(caller, stationID)
	if err != nil {
		return nil, err
	}
	first, last, err := parseMonth(month)
	if err != nil {
		return nil, err
	}

	key := calendarKey(station, first)
	if s.cache != nil {
		var cached dto.CalendarResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		switch {
		case err == nil:
			return &cached, nil
		case !errors.Is(err, redis.ErrCacheMiss):
			s.logger.Warn("calendar cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	resp, err := s.build(ctx, station, first, last)
	if err != nil {
		s.logger.Error("build calendar failed", zap.String("station_id", station), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, s.ttl); err != nil {
			s.logger.Warn("calendar cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *calendarService) build(ctx context.Context, station string, first, last time.Time) (*dto.CalendarResponse, error) {
	drivers, err := s.repo.Driver.ListByStation(ctx, station)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.WorkingHours.ListByStationAndRange(ctx, station, first, last)
	if err != nil {
		return nil, err
	}
	leaves, err := s.repo.Leave.ListByStationAndRange(ctx, station, first, last)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]model.WorkingHoursRecord)
	for _, r := range records {
		k := formatDate(r.WorkDate)
		byDay[k] = append(byDay[k], r)
	}

	today := model.CivilDate(s.now().In(s.loc))
	resp := &dto.CalendarResponse{
		StationID: station,
		Month:     first.Format("2006-01"),
		Days:      make([]dto.CalendarDay, 0, last.Day()),
	}
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := formatDate(day)
		cov := coverage(drivers, byDay[key], leaves, day, today)

		cell := dto.CalendarDay{Date: key, Submitted: len(cov.records), OnLeave: len(cov.onLeave)}
		for i := range cov.records {
			switch cov.records[i].Status {
			case model.WorkingHoursPending:
				cell.Pending++
			case model.WorkingHoursApproved:
				cell.Approved++
			case model.WorkingHoursRejected:
				cell.Rejected++
			}
		}
		if cov.evaluate {
			n := len(cov.missing)
			cell.Missing = &n
		}
		resp.Days = append(resp.Days, cell)
	}
	return resp, nil
}
