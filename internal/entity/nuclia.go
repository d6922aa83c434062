package entity

// Vendor API payloads. The search endpoint returns a resource map keyed by
// resource id; the ask endpoint streams NDJSON items that are accumulated
// into an AskResult by the connector.

type SearchRequest struct {
	Query    string   `json:"query"`
	Features []string `json:"features"`
	MinScore float64  `json:"min_score"`
	PageSize int      `json:"page_size"`
}

type SearchResponse struct {
	Total     int                       `json:"total"`
	Resources map[string]SearchResource `json:"resources"`
}

type SearchResource struct {
	Title      string                     `json:"title"`
	Paragraphs map[string]SearchParagraph `json:"paragraphs,omitempty"`
}

type SearchParagraph struct {
	Text string `json:"text"`
}

type AskRequest struct {
	Query     string   `json:"query"`
	Features  []string `json:"features"`
	MaxTokens int      `json:"max_tokens"`
}

// AskStreamLine is one NDJSON line of the ask response stream.
type AskStreamLine struct {
	Item AskStreamItem `json:"item"`
}

type AskStreamItem struct {
	Type    string           `json:"type"`
	Text    string           `json:"text,omitempty"`
	Results *AskRetrievalSet `json:"results,omitempty"`
}

type AskRetrievalSet struct {
	Resources map[string]SearchResource `json:"resources"`
}

// AskResult is the assembled answer plus its retrieval sources.
type AskResult struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
