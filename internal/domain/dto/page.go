package dto

import "github.com/guttosm/tickerdesk/internal/domain/models"

// SelectMarketRequest is the body of PUT /api/v1/pages/{id}/market.
type SelectMarketRequest struct {
	Index *int `json:"index" binding:"required" example:"0"`
}

// SetTickerRequest is the body of PUT /api/v1/pages/{id}/ticker.
type SetTickerRequest struct {
	Ticker string `json:"ticker" example:"600310"`
}

// PageResponse wraps a page snapshot together with its session id.
type PageResponse struct {
	ID    string           `json:"id" example:"0b8f7c9e-2f4a-4c8e-9a49-6a7c51f7d5a1"`
	State models.PageState `json:"state"`
}

// MarketOption is one entry of the market picker.
type MarketOption struct {
	Index int    `json:"index" example:"0"`
	Name  string `json:"name" example:"Shanghai"`
	Label string `json:"label" example:"上海"`
}

// MarketOptions lists the picker entries in display order.
func MarketOptions() []MarketOption {
	markets := models.Markets()
	out := make([]MarketOption, 0, len(markets))
	for _, m := range markets {
		out = append(out, MarketOption{Index: m.Index(), Name: m.String(), Label: m.Label()})
	}
	return out
}

// HistoryResponse lists recent completed queries.
type HistoryResponse struct {
	Items []models.QueryRecord `json:"items"`
}
