package render

import (
	"fmt"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
	"github.com/xuri/excelize/v2"
)

// ServicesXLSX renders the catalog export as a workbook with one sheet.
func ServicesXLSX(services []entity.CatalogService) ([]byte, error) {
	rows := make([][]interface{}, 0, len(services))
	for _, svc := range services {
		row := ServiceRow(svc)
		rows = append(rows, []interface{}{row[0], row[1], svc.Price, row[3]})
	}
	return workbook("Services", toInterfaces(ServicesCSVHeader), rows, []float64{32, 16, 14, 12})
}

// PaymentsXLSX renders a payment list; amounts stay numeric so the sheet
// can be summed.
func PaymentsXLSX(payments []entity.Payment) ([]byte, error) {
	header := []interface{}{"Date", "Patient", "Services", "Method", "Status", "Currency", "Amount"}
	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		patient := ""
		if p.Patient != nil {
			patient = p.Patient.DisplayName()
		}
		when := p.CreatedAt
		if when == nil {
			when = p.StartDate
		}
		rows = append(rows, []interface{}{
			Date(when),
			patient,
			len(p.Services),
			p.Method,
			p.Status.String(),
			p.Currency,
			p.Amount,
		})
	}
	return workbook("Payments", header, rows, []float64{14, 28, 10, 12, 10, 12, 14})
}

func workbook(sheet string, header []interface{}, rows [][]interface{}, widths []float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
