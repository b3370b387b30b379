package models

// AnalysisResult is one record returned by the analysis service.
//
// Its shape is owned by the service and is not validated here: the raw JSON
// bytes are kept as received and written back out unchanged.
type AnalysisResult []byte

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *AnalysisResult) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}
