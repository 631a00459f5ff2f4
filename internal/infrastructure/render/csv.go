package render

import (
	"strings"

	"github.com/sangkips/clinic-billing/internal/domain/entity"
)

// ServicesCSVHeader is the header row of the catalog export.
var ServicesCSVHeader = []string{"Name", "Created At", "Price (Tsh)", "Status"}

// ServicesCSV renders the catalog export. Every field is quoted and rows
// are separated by a bare newline.
func ServicesCSV(services []entity.CatalogService) []byte {
	rows := make([]string, 0, len(services)+1)
	rows = append(rows, csvRow(ServicesCSVHeader))
	for _, svc := range services {
		rows = append(rows, csvRow(ServiceRow(svc)))
	}
	return []byte(strings.Join(rows, "\n"))
}

// ServiceRow is the exported representation of one catalog entry.
func ServiceRow(svc entity.CatalogService) []string {
	name := svc.Name
	if name == "" {
		name = "N/A"
	}
	status := "Enabled"
	if svc.Disabled {
		status = "Disabled"
	}
	return []string{name, Date(svc.CreatedAt), Number(svc.Price), status}
}

func csvRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
