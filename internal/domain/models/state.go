package models

// PageState is what the query page renders.
//
// IsLoading and a non-empty Error are never both set once a request completes.
// Results is cleared at the start of every submission and replaced wholesale
// by each successful response.
type PageState struct {
	Market    Market           `json:"market"`
	Ticker    string           `json:"ticker"`
	IsLoading bool             `json:"is_loading"`
	Error     string           `json:"error"`
	Results   []AnalysisResult `json:"results"`
	RequestID string           `json:"request_id,omitempty"` // latest submission
}

// Clone returns a copy whose Results slice is not shared with s.
func (s PageState) Clone() PageState {
	out := s
	out.Results = make([]AnalysisResult, len(s.Results))
	copy(out.Results, s.Results)
	return out
}
