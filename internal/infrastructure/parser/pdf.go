package parser

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ekipteam/ekip/internal/core/domain"
)

func parsePDF(content []byte) ([]domain.Segment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "parse pdf document", err)
	}

	var segments []domain.Segment
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single corrupt page should not discard the rest.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{Text: text, Page: pageNum})
	}
	return segments, nil
}
