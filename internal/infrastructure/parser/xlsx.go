package parser

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ekipteam/ekip/internal/core/domain"
)

func parseSpreadsheet(content []byte) ([]domain.Segment, error) {
	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "parse spreadsheet document", err)
	}
	defer file.Close()

	var segments []domain.Segment
	for sheetIdx, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		segments = append(segments, domain.Segment{
			Text: sheet + "\n" + strings.Join(lines, "\n"),
			Page: sheetIdx + 1,
		})
	}
	return segments, nil
}
