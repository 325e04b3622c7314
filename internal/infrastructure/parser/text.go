package parser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/ekipteam/ekip/internal/core/domain"
)

func parseText(content []byte) ([]domain.Segment, error) {
	if !utf8.Valid(content) {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "parse text document",
			errors.New("content is not valid UTF-8"))
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return nil, nil
	}
	return []domain.Segment{{Text: text, Page: 1}}, nil
}
