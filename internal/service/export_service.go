package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sad/backend/internal/repository"
)

// ── export errors ──

var (
	ErrExportGenerateFail = errors.New("failed to generate the spreadsheet")
)

var weekdayNames = [7]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

// ExportService spreadsheet exports
type ExportService interface {
	// ExportWorkerMonth one row per visit of the worker in the month plus a
	// totals row. Returns the file and a suggested file name.
	ExportWorkerMonth(ctx context.Context, workerID string, year, month int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo     *repository.Repository
	calendar *calendarSource
	logger   *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, calendar *calendarSource, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, calendar: calendar, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWorkerMonth
// ═══════════════════════════════════════════════════════════
//
// Layout:
//   - row 1: title with worker name and month
//   - row 2: header Fecha | Día | Inicio | Fin | Usuario | Dirección | Horas | Tipo
//   - rows 3..n: visits in date then start order; festive days shaded
//   - last row: total hours

func (s *exportService) ExportWorkerMonth(ctx context.Context, workerID string, year, month int) (*bytes.Buffer, string, error) {
	worker, err := s.repo.Worker.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrWorkerNotFound
		}
		s.logger.Error("query worker failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, "", err
	}

	first, last := monthRange(year, month)
	holidays, err := s.calendar.holidays(ctx, first, last)
	if err != nil {
		s.logger.Error("load holidays failed", zap.Error(err))
		return nil, "", err
	}
	assignments, err := s.repo.Assignment.ListActiveInRange(ctx, repository.AssignmentFilter{WorkerID: workerID}, first, last)
	if err != nil {
		s.logger.Error("load assignments failed", zap.String("worker_id", workerID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Visitas"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 12)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "D", 8)
	f.SetColWidth(sheet, "E", "E", 28)
	f.SetColWidth(sheet, "F", "F", 36)
	f.SetColWidth(sheet, "G", "G", 8)
	f.SetColWidth(sheet, "H", "H", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	festiveStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FCE4D6"}, Pattern: 1},
	})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	// title
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %02d/%d", worker.FullName(), month, year))
	f.MergeCell(sheet, "A1", "H1")
	f.SetCellStyle(sheet, "A1", "H1", headerStyle)

	// header
	for i, h := range []string{"Fecha", "Día", "Inicio", "Fin", "Usuario", "Dirección", "Horas", "Tipo"} {
		f.SetCellValue(sheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheet, "A2", "H2", headerStyle)

	// visits
	row := 3
	totalMinutes := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		festive := holidays.isFestive(day)
		for _, v := range visitsOn(assignments, day, festive) {
			address := ""
			if v.assignment.User != nil {
				address = v.assignment.User.Address
			}
			f.SetCellValue(sheet, cell("A", row), formatDate(day))
			f.SetCellValue(sheet, cell("B", row), weekdayNames[day.Weekday()])
			f.SetCellValue(sheet, cell("C", row), v.slot.Start)
			f.SetCellValue(sheet, cell("D", row), v.slot.End)
			f.SetCellValue(sheet, cell("E", row), userName(v.assignment))
			f.SetCellValue(sheet, cell("F", row), address)
			f.SetCellValue(sheet, cell("G", row), hours(v.minutes))
			f.SetCellValue(sheet, cell("H", row), v.assignment.AssignmentType)
			if festive {
				f.SetCellStyle(sheet, cell("A", row), cell("H", row), festiveStyle)
			}
			totalMinutes += v.minutes
			row++
		}
	}

	// totals
	f.SetCellValue(sheet, cell("F", row), "Total")
	f.SetCellValue(sheet, cell("G", row), hours(totalMinutes))
	f.SetCellStyle(sheet, cell("F", row), cell("G", row), totalStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write spreadsheet failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("visitas_%s_%d-%02d.xlsx", fileSafe(worker.FullName()), year, month)
	return buf, filename, nil
}

// ── helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r == '/' || r == '\\' || r == '"' || r == ':':
			return -1
		}
		return r
	}, s)
}
