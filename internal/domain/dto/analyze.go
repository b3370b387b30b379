package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/guttosm/tickerdesk/internal/domain/models"
)

// AnalyzeRequest is the body posted to the analysis service.
type AnalyzeRequest struct {
	Market string `json:"market" example:"Shanghai"`
	Ticker string `json:"ticker" example:"600310"`
}

// ResultShape tells which JSON form the analysis service answered with.
type ResultShape int

const (
	ShapeObject ResultShape = iota + 1
	ShapeArray
)

func (s ResultShape) String() string {
	switch s {
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	default:
		return "unknown"
	}
}

var (
	// ErrEmptyResult is returned for an empty or null response body.
	ErrEmptyResult = errors.New("empty analysis result")
	// ErrUnexpectedShape is returned when the body is neither an object nor an array.
	ErrUnexpectedShape = errors.New("analysis result is neither an object nor an array")
)

// ResultSet is the analysis response decoded at the boundary.
//
// A single object becomes a one-element Items; an array is kept as-is.
type ResultSet struct {
	Shape ResultShape
	Items []models.AnalysisResult
}

func (r *ResultSet) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrEmptyResult
	}

	switch trimmed[0] {
	case '{':
		var obj json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		r.Shape = ShapeObject
		r.Items = []models.AnalysisResult{models.AnalysisResult(obj)}
	case '[':
		var items []models.AnalysisResult
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		if items == nil {
			items = []models.AnalysisResult{}
		}
		r.Shape = ShapeArray
		r.Items = items
	default:
		return fmt.Errorf("%w: starts with %q", ErrUnexpectedShape, trimmed[0])
	}
	return nil
}

// DecodeResultSet decodes a raw response body.
func DecodeResultSet(body []byte) (ResultSet, error) {
	var rs ResultSet
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return rs, ErrEmptyResult
	}
	if err := json.Unmarshal(body, &rs); err != nil {
		return ResultSet{}, err
	}
	return rs, nil
}
