package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"fleetdesk/backend/internal/dto"
	"fleetdesk/backend/internal/model"
	pkgerrors "fleetdesk/backend/pkg/errors"
)

var (
	testManager = Caller{UserID: "u-m1", Role: model.RoleManager, StationID: "st-1"}
	testDriver  = Caller{UserID: "u-d1", Role: model.RoleDriver, StationID: "st-1", DriverID: "d1"}
)

func strPtr(s string) *string { return &s }

// ── stations ──

func TestStationCreate(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewStationService(repo, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Create(ctx, testAdmin, &dto.CreateStationRequest{Code: " ham1 ", Name: "Hamburg"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.Code != "HAM1" || !resp.IsActive {
		t.Errorf("unexpected station %+v", resp)
	}

	if _, err := svc.Create(ctx, testAdmin, &dto.CreateStationRequest{Code: "dus1", Name: "Dup"}); !errors.Is(err, ErrStationCodeExists) {
		t.Errorf("expected ErrStationCodeExists, got %v", err)
	}
	if _, err := svc.Create(ctx, testManager, &dto.CreateStationRequest{Code: "X1", Name: "X"}); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestStationGetAndList(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewStationService(repo, zap.NewNop())
	ctx := context.Background()

	st, err := svc.Get(ctx, testManager, "st-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if st.DriverCount != 4 {
		t.Errorf("expected 4 drivers in st-1, got %d", st.DriverCount)
	}
	if _, err := svc.Get(ctx, testManager, "st-2"); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	list, _ := svc.List(ctx, testManager)
	if len(list) != 1 || list[0].ID != "st-1" {
		t.Errorf("manager should see only own station, got %+v", list)
	}
	list, _ = svc.List(ctx, testAdmin)
	if len(list) != 2 {
		t.Errorf("admin should see all stations, got %d", len(list))
	}
}

func TestStationDelete_RefusesWithDrivers(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewStationService(repo, zap.NewNop())
	ctx := context.Background()

	err := svc.Delete(ctx, testAdmin, "st-1")
	if !errors.Is(err, ErrStationHasDrivers) || !errors.Is(err, pkgerrors.ErrInvalidState) {
		t.Fatalf("expected ErrStationHasDrivers, got %v", err)
	}

	db.stations["st-3"] = model.Station{StationID: "st-3", Code: "EMPTY", IsActive: true}
	if err := svc.Delete(ctx, testAdmin, "st-3"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete(ctx, testAdmin, "st-3"); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("expected ErrStationNotFound, got %v", err)
	}
}

// ── drivers ──

func TestDriverCreate(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewDriverService(repo, zap.NewNop())
	ctx := context.Background()

	resp, err := svc.Create(ctx, testManager, &dto.CreateDriverRequest{
		FirstName: "Frida", LastName: "Fuchs", PersonnelNo: "P-010", LicenceExpiry: "2027-05-31",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.StationID != "st-1" {
		t.Errorf("manager's driver should land in st-1, got %s", resp.StationID)
	}
	if resp.LicenceExpiry == nil || *resp.LicenceExpiry != "2027-05-31" {
		t.Errorf("unexpected licence expiry %v", resp.LicenceExpiry)
	}

	_, err = svc.Create(ctx, testManager, &dto.CreateDriverRequest{FirstName: "G", LastName: "H", PersonnelNo: "P-010"})
	assertFieldError(t, err, "personnel_no")

	_, err = svc.Create(ctx, testManager, &dto.CreateDriverRequest{FirstName: "G", LastName: "H", PersonnelNo: "P-011", LicenceExpiry: "31.05.2027"})
	assertFieldError(t, err, "licence_expiry")

	if _, err := svc.Create(ctx, testDriver, &dto.CreateDriverRequest{FirstName: "G", LastName: "H", PersonnelNo: "P-012"}); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("drivers cannot create drivers, got %v", err)
	}
}

func TestDriverList_Scope(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewDriverService(repo, zap.NewNop())

	list, total, err := svc.List(context.Background(), testManager, &dto.DriverListRequest{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Errorf("expected 3 active drivers in st-1, got %d", total)
	}
	if _, _, err := svc.List(context.Background(), testManager, &dto.DriverListRequest{StationID: "st-2"}); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestDriverUpdate_Deactivate(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewDriverService(repo, zap.NewNop())

	off := false
	resp, err := svc.Update(context.Background(), testManager, "d2", &dto.UpdateDriverRequest{IsActive: &off, Phone: strPtr("+49 211 555")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if resp.IsActive || resp.Phone != "+49 211 555" {
		t.Errorf("unexpected driver %+v", resp)
	}
	if _, err := svc.Get(context.Background(), testManager, "d4"); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden for st-2 driver, got %v", err)
	}
}

// ── vans ──

func TestVanCreateAndUpdate(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewVanService(repo, zap.NewNop())
	ctx := context.Background()

	van, err := svc.Create(ctx, testManager, &dto.CreateVanRequest{PlateNumber: " d-fd 102 ", Model: "Sprinter", Mileage: 12000})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if van.PlateNumber != "D-FD 102" || van.StationID != "st-1" || van.Status != model.VanStatusActive {
		t.Errorf("unexpected van %+v", van)
	}

	_, err = svc.Update(ctx, testManager, van.ID, &dto.UpdateVanRequest{Mileage: intPtr(11000)})
	assertFieldError(t, err, "mileage")

	workshop := model.VanStatusWorkshop
	updated, err := svc.Update(ctx, testManager, van.ID, &dto.UpdateVanRequest{Mileage: intPtr(12500), Status: &workshop})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Mileage != 12500 || updated.Status != model.VanStatusWorkshop {
		t.Errorf("unexpected van %+v", updated)
	}

	if _, err := svc.Get(ctx, testManager, "van-2"); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, testManager, "van-404"); !errors.Is(err, ErrVanNotFound) {
		t.Errorf("expected ErrVanNotFound, got %v", err)
	}
}

// ── maintenance ──

func newAttachment(body string) *Attachment {
	return &Attachment{Filename: "invoice.pdf", ContentType: "application/pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func maintenanceRequest() *dto.CreateMaintenanceLogRequest {
	return &dto.CreateMaintenanceLogRequest{
		ServiceDate: "2024-03-02", Mileage: 1200, Kind: model.MaintenanceRepair,
		Description: "brake pads", CostCents: 34900,
	}
}

func TestMaintenanceCreate_WithAttachment(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	store := newFakeStore()
	svc := NewMaintenanceService(repo, store, zap.NewNop())
	ctx := context.Background()

	entry, err := svc.Create(ctx, testManager, "van-1", maintenanceRequest(), newAttachment("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if entry.AttachmentName == nil || *entry.AttachmentName != "invoice.pdf" {
		t.Errorf("attachment name not stored: %v", entry.AttachmentName)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected one stored object, got %d", len(store.objects))
	}
	for key := range store.objects {
		if !strings.HasPrefix(key, "maintenance/van-1/") || !strings.HasSuffix(key, ".pdf") {
			t.Errorf("unexpected object key %s", key)
		}
	}
	if db.vans["van-1"].Mileage != 1200 {
		t.Errorf("van mileage should be raised to 1200, got %d", db.vans["van-1"].Mileage)
	}

	link, err := svc.AttachmentURL(ctx, testManager, entry.ID)
	if err != nil {
		t.Fatalf("AttachmentURL failed: %v", err)
	}
	if !strings.Contains(link.URL, "filename=invoice.pdf") {
		t.Errorf("unexpected url %s", link.URL)
	}

	if err := svc.Delete(ctx, testManager, entry.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(store.objects) != 0 {
		t.Error("object should be removed with the log")
	}
}

func TestMaintenanceCreate_StorageDisabled(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	svc := NewMaintenanceService(repo, nil, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.Create(ctx, testManager, "van-1", maintenanceRequest(), newAttachment("x")); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", err)
	}
	entry, err := svc.Create(ctx, testManager, "van-1", maintenanceRequest(), nil)
	if err != nil {
		t.Fatalf("a log without attachment needs no storage: %v", err)
	}
	if _, err := svc.AttachmentURL(ctx, testManager, entry.ID); !errors.Is(err, ErrNoAttachment) {
		t.Errorf("expected ErrNoAttachment, got %v", err)
	}
}

func TestMaintenanceCreate_Validation(t *testing.T) {
	repo, db := newMockRepository()
	seedFleet(db)
	store := newFakeStore()
	svc := NewMaintenanceService(repo, store, zap.NewNop())
	ctx := context.Background()

	big := newAttachment("x")
	big.Size = MaxAttachmentBytes + 1
	if _, err := svc.Create(ctx, testManager, "van-1", maintenanceRequest(), big); !errors.Is(err, ErrAttachmentTooLarge) {
		t.Errorf("expected ErrAttachmentTooLarge, got %v", err)
	}

	req := maintenanceRequest()
	req.Kind = "wash"
	_, err := svc.Create(ctx, testManager, "van-1", req, nil)
	assertFieldError(t, err, "kind")

	if _, err := svc.Create(ctx, testManager, "van-2", maintenanceRequest(), nil); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("expected forbidden for st-2 van, got %v", err)
	}
	if len(store.objects) != 0 {
		t.Error("nothing should be uploaded")
	}
}
