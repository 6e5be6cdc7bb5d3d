package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fleetdesk/backend/internal/model"
	"fleetdesk/backend/internal/repository"
)

var ErrExportGenerateFail = errors.New("failed to generate workbook")

const (
	sheetRecords = "Working hours"
	sheetTotals  = "Totals"
)

// ExportService spreadsheet exports
//
// The monthly workbook has two sheets: every record of the month, one row
// each, and approved minutes and kilometres summed per driver.
type ExportService interface {
	// ExportMonth returns the workbook and a suggested filename.
	ExportMonth(ctx context.Context, caller Caller, stationID, month string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var recordHeader = []string{
	"Driver", "Personnel no.", "Date", "Tour", "Van",
	"Scanner login", "Depot departure", "First delivery", "Last delivery", "Depot return",
	"Break (min)", "Total (h:mm)", "Km start", "Km end", "Km total", "Status",
}

// driverTotal approved sums of one driver
type driverTotal struct {
	name        string
	personnelNo string
	shifts      int
	minutes     int
	km          int
}

func (s *exportService) ExportMonth(ctx context.Context, caller Caller, stationID, month string) (*bytes.Buffer, string, error) {
	station, err := resolveStation(caller, stationID)
	if err != nil {
		return nil, "", err
	}
	first, last, err := parseMonth(month)
	if err != nil {
		return nil, "", err
	}

	records, err := s.repo.WorkingHours.ListByStationAndRange(ctx, station, first, last)
	if err != nil {
		s.logger.Error("load export records failed", zap.String("station_id", station), zap.Error(err))
		return nil, "", err
	}

	stationCode := station
	if st, err := s.repo.Station.GetByID(ctx, station); err == nil {
		stationCode = st.Code
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetRecords)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")
	if _, err := f.NewSheet(sheetTotals); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── records sheet ──
	for i, h := range recordHeader {
		f.SetCellValue(sheetRecords, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetRecords, "A1", cell(colName(len(recordHeader)-1), 1), headerStyle)
	f.SetColWidth(sheetRecords, "A", "A", 24)
	f.SetColWidth(sheetRecords, "B", colName(len(recordHeader)-1), 14)
	f.SetPanes(sheetRecords, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	totals := make(map[string]*driverTotal)
	row := 2
	for i := range records {
		r := &records[i]
		name, personnelNo := r.DriverID, ""
		if r.Driver != nil {
			name, personnelNo = r.Driver.FullName(), r.Driver.PersonnelNo
		}
		van := ""
		if r.Van != nil {
			van = r.Van.PlateNumber
		}

		values := []interface{}{
			name, personnelNo, formatDate(r.WorkDate), r.TourNumber, van,
			r.ScannerLogin.String(), r.DepotDeparture.String(), r.FirstDelivery.String(),
			r.LastDelivery.String(), r.DepotReturn.String(),
			r.BreakMinutes, FormatMinutes(r.TotalMinutes), r.KmStart, r.KmEnd, r.KmTotal, r.Status,
		}
		for c, v := range values {
			f.SetCellValue(sheetRecords, cell(colName(c), row), v)
		}
		row++

		if r.Status != model.WorkingHoursApproved {
			continue
		}
		t, ok := totals[r.DriverID]
		if !ok {
			t = &driverTotal{name: name, personnelNo: personnelNo}
			totals[r.DriverID] = t
		}
		t.shifts++
		t.minutes += r.TotalMinutes
		t.km += r.KmTotal
	}

	// ── totals sheet ──
	totalHeader := []string{"Driver", "Personnel no.", "Approved shifts", "Total (h:mm)", "Total minutes", "Km total"}
	for i, h := range totalHeader {
		f.SetCellValue(sheetTotals, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetTotals, "A1", cell(colName(len(totalHeader)-1), 1), headerStyle)
	f.SetColWidth(sheetTotals, "A", "A", 24)
	f.SetColWidth(sheetTotals, "B", colName(len(totalHeader)-1), 16)

	sorted := make([]*driverTotal, 0, len(totals))
	for _, t := range totals {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].name < sorted[j].name })

	row = 2
	for _, t := range sorted {
		values := []interface{}{t.name, t.personnelNo, t.shifts, FormatMinutes(t.minutes), t.minutes, t.km}
		for c, v := range values {
			f.SetCellValue(sheetTotals, cell(colName(c), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("working-hours_%s_%s.xlsx", stationCode, first.Format("2006-01"))
	return buf, filename, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
