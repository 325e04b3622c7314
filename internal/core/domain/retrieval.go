package domain

const (
	SourceVector  = "vector"
	SourceKeyword = "keyword"
)

// AccessFilter restricts vector search to chunks whose access_roles
// intersect AnyRole. A nil *AccessFilter means unrestricted visibility.
type AccessFilter struct {
	AnyRole []string
}

// Candidate is a retrieved chunk plus ranking metadata. Each pipeline stage
// fills in its own fields; zero values mean the stage has not run.
type Candidate struct {
	DocID          string         `json:"doc_id"`
	DocTitle       string         `json:"doc_title"`
	Department     string         `json:"department"`
	Classification Classification `json:"classification"`
	ChunkIndex     int            `json:"chunk_index"`
	Text           string         `json:"text"`

	Source      string  `json:"source"`
	Score       float64 `json:"score"`
	VecRRF      float64 `json:"-"`
	KeywordRRF  float64 `json:"-"`
	Fused       float64 `json:"-"`
	RerankScore float64 `json:"rerank_score,omitempty"`
}

type Citation struct {
	Marker     int    `json:"marker"`
	DocTitle   string `json:"doc_title"`
	DocID      string `json:"doc_id"`
	Department string `json:"department"`
	ChunkText  string `json:"chunk_text"`
}

type SearchResult struct {
	Answer      string     `json:"answer"`
	Citations   []Citation `json:"citations"`
	LatencyMs   int64      `json:"latency_ms"`
	ChunksFound int        `json:"chunks_found"`

	// Fallback marks answers composed without the language model.
	// Internal signal, not part of the response body.
	Fallback bool `json:"-"`
}
