package parser

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/ekipteam/ekip/internal/core/domain"
)

func parseJSON(content []byte) ([]domain.Segment, error) {
	var value any
	if err := json.Unmarshal(content, &value); err != nil {
		return nil, domain.WrapError(domain.ErrUnsupportedFormat, "parse json document", err)
	}

	var parts []string
	collectStrings(value, &parts)

	text := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if text == "" {
		return nil, nil
	}
	return []domain.Segment{{Text: text, Page: 1}}, nil
}

// collectStrings gathers every string value in document order. Object
// keys are visited sorted so the extracted text is stable across runs.
func collectStrings(value any, out *[]string) {
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*out = append(*out, s)
		}
	case []any:
		for _, item := range v {
			collectStrings(item, out)
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectStrings(v[k], out)
		}
	}
}
