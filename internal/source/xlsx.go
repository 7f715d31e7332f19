package source

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// ParseWorkbook reads a local XLSX export of the spreadsheet, one sheet per
// tab, as an offline substitute for the live CSV fetch. Tabs missing from
// the workbook are skipped with a warning.
func ParseWorkbook(path string, tabs []Tab) ([]SheetRecord, SheetStats, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, SheetStats{}, eris.Wrapf(err, "source: open workbook %s", path)
	}

	var all []SheetRecord
	var total SheetStats

	for _, tab := range tabs {
		sheet, ok := f.Sheet[tab.Name]
		if !ok {
			zap.L().Warn("source: workbook missing tab", zap.String("tab", tab.Name))
			continue
		}

		rows := make([][]string, 0, len(sheet.Rows))
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, c := range row.Cells {
				cells = append(cells, c.String())
			}
			rows = append(rows, cells)
		}

		records, stats, err := recordsFromRows(rows, tab)
		if err != nil {
			zap.L().Warn("source: workbook tab parse failed",
				zap.String("tab", tab.Name),
				zap.Error(err),
			)
			continue
		}
		all = append(all, records...)
		total.Rows += stats.Rows
		total.Kept += stats.Kept
		total.Dropped += stats.Dropped
	}

	return all, total, nil
}
