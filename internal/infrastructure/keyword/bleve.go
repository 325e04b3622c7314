// Package keyword implements BM25-style chunk retrieval with Bleve.
// Hits come back unfiltered; the search use case applies permission
// checks after over-fetching.
package keyword

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/ekipteam/ekip/internal/core/domain"
)

type Index struct {
	index bleve.Index
}

// NewIndex creates or opens a Bleve index at path. An existing index is
// reused so restarts do not force a full re-ingestion. Changing the
// mapping requires removing the index directory.
func NewIndex(path string) (*Index, error) {
	mapping := bleve.NewIndexMapping()

	chunkMapping := bleve.NewDocumentMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps exact
	// word queries working.
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = standard.Name
	chunkMapping.AddFieldMappingsAt("text", textField)
	chunkMapping.AddFieldMappingsAt("doc_title", textField)

	keywordField := bleve.NewKeywordFieldMapping()
	chunkMapping.AddFieldMappingsAt("doc_id", keywordField)
	chunkMapping.AddFieldMappingsAt("department", keywordField)
	chunkMapping.AddFieldMappingsAt("classification", keywordField)

	chunkMapping.AddFieldMappingsAt("chunk_index", bleve.NewNumericFieldMapping())

	mapping.AddDocumentMapping("chunk", chunkMapping)
	mapping.DefaultType = "chunk"
	mapping.DefaultMapping = chunkMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open keyword index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, mapping)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

func (b *Index) Close() error {
	return b.index.Close()
}

// ReplaceDocument drops every chunk previously indexed for doc and
// indexes the new set in a single batch.
func (b *Index) ReplaceDocument(_ context.Context, doc *domain.Document, chunks []string) error {
	stale := bleve.NewTermQuery(doc.ID)
	stale.SetField("doc_id")
	req := bleve.NewSearchRequest(stale)
	req.Size = 10000
	existing, err := b.index.Search(req)
	if err != nil {
		return fmt.Errorf("find stale chunks for %s: %w", doc.ID, err)
	}

	batch := b.index.NewBatch()
	for _, hit := range existing.Hits {
		batch.Delete(hit.ID)
	}
	for i, chunk := range chunks {
		entry := map[string]any{
			"doc_id":         doc.ID,
			"doc_title":      doc.Title,
			"department":     doc.Department,
			"classification": string(doc.Classification),
			"chunk_index":    i,
			"text":           chunk,
		}
		if err := batch.Index(fmt.Sprintf("%s_chunk_%d", doc.ID, i), entry); err != nil {
			return fmt.Errorf("batch chunk %d of %s: %w", i, doc.ID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("apply keyword batch for %s: %w", doc.ID, err)
	}
	return nil
}

// Search matches queryText against chunk text and document titles. It
// returns up to twice the requested limit so the caller still has limit
// results left after permission filtering.
func (b *Index) Search(ctx context.Context, queryText string, limit int) ([]domain.Candidate, error) {
	if limit <= 0 {
		return nil, nil
	}

	textQuery := bleve.NewMatchQuery(queryText)
	textQuery.SetField("text")
	titleQuery := bleve.NewMatchQuery(queryText)
	titleQuery.SetField("doc_title")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(textQuery, titleQuery))
	req.Size = limit * 2
	req.Fields = []string{"*"}

	results, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	candidates := make([]domain.Candidate, 0, len(results.Hits))
	for _, hit := range results.Hits {
		candidates = append(candidates, domain.Candidate{
			DocID:          fieldString(hit.Fields, "doc_id"),
			DocTitle:       fieldString(hit.Fields, "doc_title"),
			Department:     fieldString(hit.Fields, "department"),
			Classification: domain.Classification(fieldString(hit.Fields, "classification")),
			ChunkIndex:     fieldInt(hit.Fields, "chunk_index"),
			Text:           fieldString(hit.Fields, "text"),
			Source:         domain.SourceKeyword,
			Score:          hit.Score,
		})
	}
	return candidates, nil
}

func fieldString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func fieldInt(fields map[string]any, key string) int {
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return -1
}
