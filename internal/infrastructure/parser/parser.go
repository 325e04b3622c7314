// Package parser extracts text segments from corpus files. The format
// is chosen by file extension; unsupported extensions are rejected so
// the indexing consumer can skip the document instead of indexing garbage.
package parser

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ekipteam/ekip/internal/core/domain"
	"github.com/ekipteam/ekip/internal/core/ports"
)

type Parser struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Parser {
	return &Parser{storage: storage}
}

func (p *Parser) Parse(ctx context.Context, filePath string) ([]domain.Segment, error) {
	reader, err := p.storage.Open(ctx, filePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrNotFound, "open document file", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read document file %q: %w", filePath, err)
	}

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		return parsePDF(content)
	case ".txt", ".md":
		return parseText(content)
	case ".json":
		return parseJSON(content)
	case ".xlsx":
		return parseSpreadsheet(content)
	default:
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "parse document",
			fmt.Errorf("extension %q", ext))
	}
}
