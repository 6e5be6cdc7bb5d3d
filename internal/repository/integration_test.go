//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
	"fleetdesk/backend/pkg/database"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=fleetdesk password=fleetdesk dbname=fleetdesk_test sslmode=disable TimeZone=Europe/Berlin"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect test database: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sql.DB: %v\n", err)
		os.Exit(1)
	}
	if err := database.Migrate(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type fixture struct {
	station *model.Station
	driver  *model.Driver
	van     *model.Van
	manager *model.User
}

// setupFixture creates a station with one driver, van and manager, and
// returns a cleanup that hard-deletes everything the test wrote.
func setupFixture(t *testing.T) (*fixture, func()) {
	t.Helper()
	ctx := context.Background()
	n := time.Now().UnixNano() % 100000000

	f := &fixture{}
	f.station = &model.Station{Code: fmt.Sprintf("T%d", n), Name: "Test Station"}
	if err := testDB.WithContext(ctx).Create(f.station).Error; err != nil {
		t.Fatalf("create station: %v", err)
	}
	f.driver = &model.Driver{
		StationID:   f.station.StationID,
		FirstName:   "Anna",
		LastName:    "Adler",
		PersonnelNo: fmt.Sprintf("P%d", n),
		IsActive:    true,
	}
	if err := testDB.WithContext(ctx).Create(f.driver).Error; err != nil {
		t.Fatalf("create driver: %v", err)
	}
	f.van = &model.Van{StationID: f.station.StationID, PlateNumber: fmt.Sprintf("T-%d", n), Mileage: 1000}
	if err := testDB.WithContext(ctx).Create(f.van).Error; err != nil {
		t.Fatalf("create van: %v", err)
	}
	f.manager = &model.User{
		Name:         "Manager",
		Email:        fmt.Sprintf("mgr-%d@test.local", n),
		PasswordHash: "x",
		Role:         model.RoleManager,
		StationID:    &f.station.StationID,
		IsActive:     true,
	}
	if err := testDB.WithContext(ctx).Create(f.manager).Error; err != nil {
		t.Fatalf("create manager: %v", err)
	}

	cleanup := func() {
		db := testDB.WithContext(ctx).Unscoped()
		db.Exec("DELETE FROM working_hours_edits WHERE working_hours_id IN (SELECT working_hours_id FROM working_hours WHERE station_id = ?)", f.station.StationID)
		db.Where("station_id = ?", f.station.StationID).Delete(&model.WorkingHoursRecord{})
		db.Where("station_id = ?", f.station.StationID).Delete(&model.DriverLeave{})
		db.Where("user_id = ?", f.manager.UserID).Delete(&model.User{})
		db.Where("van_id = ?", f.van.VanID).Delete(&model.Van{})
		db.Where("station_id = ?", f.station.StationID).Delete(&model.Driver{})
		db.Where("station_id = ?", f.station.StationID).Delete(&model.Station{})
	}
	return f, cleanup
}

func newRecord(f *fixture, day string) *model.WorkingHoursRecord {
	date, _ := model.ParseDate(day)
	return &model.WorkingHoursRecord{
		DriverID:       f.driver.DriverID,
		StationID:      f.station.StationID,
		WorkDate:       date,
		TourNumber:     "T-17",
		KmStart:        100,
		KmEnd:          250,
		KmTotal:        150,
		ScannerLogin:   model.MustClock("08:00"),
		DepotDeparture: model.MustClock("08:20"),
		FirstDelivery:  model.MustClock("08:45"),
		LastDelivery:   model.MustClock("16:50"),
		DepotReturn:    model.MustClock("17:30"),
		BreakMinutes:   45,
		TotalMinutes:   525,
		Status:         model.WorkingHoursPending,
	}
}

// ═══════════════════════════════════════════════════════════
// Working hours
// ═══════════════════════════════════════════════════════════

func TestWorkingHours_RoundTrip(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	rec := newRecord(f, "2024-03-04")
	if err := repo.WorkingHours.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.WorkingHours.GetByID(ctx, rec.WorkingHoursID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.WorkDate.Format(model.DateLayout) != "2024-03-04" {
		t.Errorf("work date shifted: %s", got.WorkDate.Format(model.DateLayout))
	}
	if got.ScannerLogin.String() != "08:00" || got.DepotReturn.String() != "17:30" {
		t.Errorf("clock times not preserved: %s / %s", got.ScannerLogin, got.DepotReturn)
	}
	if got.Driver == nil || got.Driver.PersonnelNo != f.driver.PersonnelNo {
		t.Error("driver not preloaded")
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
}

func TestWorkingHours_OneActivePerDriverAndDay(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	first := newRecord(f, "2024-03-05")
	if err := repo.WorkingHours.Create(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}

	err := repo.WorkingHours.Create(ctx, newRecord(f, "2024-03-05"))
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}

	// rejected rows leave the index, so a resubmission is accepted
	reason := "wrong tour"
	first.Status = model.WorkingHoursRejected
	first.RejectionReason = &reason
	first.DecidedBy = &f.manager.UserID
	now := time.Now()
	first.DecidedAt = &now
	if err := repo.WorkingHours.Update(ctx, first); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := repo.WorkingHours.Create(ctx, newRecord(f, "2024-03-05")); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}

	recs, err := repo.WorkingHours.ListByDriverAndDate(ctx, f.driver.DriverID, first.WorkDate)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Errorf("expected 2 records (rejected + pending), got %d", len(recs))
	}
}

func TestWorkingHours_OptimisticLock(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	rec := newRecord(f, "2024-03-06")
	if err := repo.WorkingHours.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	a, _ := repo.WorkingHours.GetByID(ctx, rec.WorkingHoursID)
	b, _ := repo.WorkingHours.GetByID(ctx, rec.WorkingHoursID)

	now := time.Now()
	a.Status = model.WorkingHoursApproved
	a.ApprovedBy, a.ApprovedAt = &f.manager.UserID, &now
	a.DecidedBy, a.DecidedAt = &f.manager.UserID, &now
	if err := repo.WorkingHours.Update(ctx, a); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if a.Version != 2 {
		t.Errorf("expected version 2, got %d", a.Version)
	}

	reason := "late"
	b.Status = model.WorkingHoursRejected
	b.RejectionReason = &reason
	b.DecidedBy, b.DecidedAt = &f.manager.UserID, &now
	if err := repo.WorkingHours.Update(ctx, b); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("expected ErrOptimisticLock, got %v", err)
	}
}

func TestTransaction_RollsBackEdits(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	rec := newRecord(f, "2024-03-07")
	if err := repo.WorkingHours.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.WorkingHoursEdit.Create(ctx, &model.WorkingHoursEdit{
			WorkingHoursID: rec.WorkingHoursID,
			EditorID:       f.manager.UserID,
			FieldName:      "scanner_login",
			OldValue:       "08:00",
			NewValue:       "07:30",
		}); err != nil {
			return err
		}
		if err := tx.Van.RaiseMileage(ctx, f.van.VanID, 5000); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	edits, err := repo.WorkingHoursEdit.ListByRecord(ctx, rec.WorkingHoursID)
	if err != nil {
		t.Fatalf("list edits: %v", err)
	}
	if len(edits) != 0 {
		t.Errorf("expected edits rolled back, got %d", len(edits))
	}
	van, _ := repo.Van.GetByID(ctx, f.van.VanID)
	if van.Mileage != 1000 {
		t.Errorf("expected mileage rolled back to 1000, got %d", van.Mileage)
	}
}

func TestVan_RaiseMileageNeverLowers(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	if err := repo.Van.RaiseMileage(ctx, f.van.VanID, 900); err != nil {
		t.Fatalf("raise: %v", err)
	}
	van, _ := repo.Van.GetByID(ctx, f.van.VanID)
	if van.Mileage != 1000 {
		t.Errorf("mileage lowered to %d", van.Mileage)
	}

	if err := repo.Van.RaiseMileage(ctx, f.van.VanID, 1250); err != nil {
		t.Fatalf("raise: %v", err)
	}
	van, _ = repo.Van.GetByID(ctx, f.van.VanID)
	if van.Mileage != 1250 {
		t.Errorf("expected 1250, got %d", van.Mileage)
	}
}

// ═══════════════════════════════════════════════════════════
// Master data
// ═══════════════════════════════════════════════════════════

func TestDriver_PersonnelNoUniqueAmongActive(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	dup := &model.Driver{
		StationID:   f.station.StationID,
		FirstName:   "Bernd",
		LastName:    "Berg",
		PersonnelNo: f.driver.PersonnelNo,
		IsActive:    true,
	}
	if err := repo.Driver.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}

	if err := repo.Driver.Delete(ctx, f.driver.DriverID, f.manager.UserID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := repo.Driver.Create(ctx, dup); err != nil {
		t.Fatalf("personnel number should be reusable after soft delete: %v", err)
	}
	if _, err := repo.Driver.GetByID(ctx, f.driver.DriverID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("soft-deleted driver still visible: %v", err)
	}
}

func TestLeave_Overlap(t *testing.T) {
	f, cleanup := setupFixture(t)
	defer cleanup()
	ctx := context.Background()
	repo := repository.NewRepository(testDB)

	start, _ := model.ParseDate("2024-03-11")
	end, _ := model.ParseDate("2024-03-15")
	leave := &model.DriverLeave{
		DriverID:  f.driver.DriverID,
		StationID: f.station.StationID,
		LeaveType: model.LeaveTypePaid,
		StartDate: start,
		EndDate:   end,
	}
	if err := repo.Leave.Create(ctx, leave); err != nil {
		t.Fatalf("create leave: %v", err)
	}

	tests := []struct {
		from, to string
		want     int
	}{
		{"2024-03-01", "2024-03-10", 0},
		{"2024-03-01", "2024-03-11", 1},
		{"2024-03-15", "2024-03-20", 1},
		{"2024-03-16", "2024-03-20", 0},
	}
	for _, tt := range tests {
		from, _ := model.ParseDate(tt.from)
		to, _ := model.ParseDate(tt.to)
		got, err := repo.Leave.ListOverlapping(ctx, f.driver.DriverID, from, to)
		if err != nil {
			t.Fatalf("overlap %s..%s: %v", tt.from, tt.to, err)
		}
		if len(got) != tt.want {
			t.Errorf("overlap %s..%s: expected %d, got %d", tt.from, tt.to, tt.want, len(got))
		}
	}

	day, _ := model.ParseDate("2024-03-13")
	onLeave, err := repo.Leave.ListByStationAndDate(ctx, f.station.StationID, day)
	if err != nil || len(onLeave) != 1 {
		t.Errorf("expected one leave on 2024-03-13, got %d (%v)", len(onLeave), err)
	}
}
