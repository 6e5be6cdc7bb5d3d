package service

import (
	"fmt"
	"time"

	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// Break policy: a shift longer than nine hours earns the long break.
const (
	longShiftThresholdMinutes = 540
	shortBreakMinutes         = 30
	longBreakMinutes          = 45
)

// ShiftResult derived minutes of one shift
type ShiftResult struct {
	RawMinutes   int
	BreakMinutes int
	TotalMinutes int
}

// ComputeShift derives break and worked minutes from login and depot return.
// A return clock earlier than login means the shift crossed midnight and
// ends on the next calendar day; no other field moves the day.
func ComputeShift(workDate time.Time, scannerLogin, depotReturn model.ClockTime) (ShiftResult, error) {
	day := model.CivilDate(workDate)
	login := scannerLogin.On(day)
	ret := depotReturn.On(day)
	if ret.Before(login) {
		ret = depotReturn.On(day.AddDate(0, 0, 1))
	}

	raw := int(ret.Sub(login) / time.Minute)
	brk := shortBreakMinutes
	if raw > longShiftThresholdMinutes {
		brk = longBreakMinutes
	}

	total := raw - brk
	if total <= 0 {
		return ShiftResult{}, pkgerrors.Invalid("", "invalid time entries")
	}
	return ShiftResult{RawMinutes: raw, BreakMinutes: brk, TotalMinutes: total}, nil
}

// ComputeDistance is kmEnd-kmStart clamped at zero. Callers that accept
// input reject kmEnd <= kmStart before getting here.
func ComputeDistance(kmStart, kmEnd int) int {
	if kmEnd <= kmStart {
		return 0
	}
	return kmEnd - kmStart
}

// FormatMinutes renders minutes as h:mm.
func FormatMinutes(m int) string {
	if m < 0 {
		return "-" + FormatMinutes(-m)
	}
	return fmt.Sprintf("%d:%02d", m/60, m%60)
}
