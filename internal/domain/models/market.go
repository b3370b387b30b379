package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Market is the exchange a ticker is listed on.
//
// The set is fixed and ordered: index 0 is Shanghai, index 1 is Shenzhen.
// The JSON form is the English name ("Shanghai"/"Shenzhen").
type Market int

const (
	Shanghai Market = iota
	Shenzhen
)

var marketNames = [...]struct {
	name  string
	label string
	code  string
}{
	Shanghai: {name: "Shanghai", label: "上海", code: "sh"},
	Shenzhen: {name: "Shenzhen", label: "深圳", code: "sz"},
}

// Markets returns the selectable markets in display order.
func Markets() []Market {
	return []Market{Shanghai, Shenzhen}
}

// MarketAt returns the market at the given position of the selection list.
func MarketAt(index int) (Market, bool) {
	if index < 0 || index >= len(marketNames) {
		return 0, false
	}
	return Market(index), true
}

// ParseMarket accepts an index ("0", "1"), an English name, a Chinese label or
// an exchange code ("sh", "sz"). Matching is case-insensitive.
func ParseMarket(s string) (Market, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		if m, ok := MarketAt(i); ok {
			return m, nil
		}
		return 0, fmt.Errorf("unknown market %q", s)
	}
	for i, n := range marketNames {
		if strings.EqualFold(s, n.name) || s == n.label || strings.EqualFold(s, n.code) {
			return Market(i), nil
		}
	}
	return 0, fmt.Errorf("unknown market %q", s)
}

func (m Market) valid() bool { return m >= 0 && int(m) < len(marketNames) }

func (m Market) String() string {
	if !m.valid() {
		return "Market(" + strconv.Itoa(int(m)) + ")"
	}
	return marketNames[m].name
}

// Label is the name shown to users of the page.
func (m Market) Label() string {
	if !m.valid() {
		return m.String()
	}
	return marketNames[m].label
}

// Index is the position of m in Markets().
func (m Market) Index() int { return int(m) }

func (m Market) MarshalJSON() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("invalid market %d", int(m))
	}
	return json.Marshal(m.String())
}

func (m *Market) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("market must be a string: %w", err)
	}
	parsed, err := ParseMarket(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
