package page

import "time"

// NoticeKind identifies a transient user-facing notice.
type NoticeKind string

const (
	NoticeInvalidTicker NoticeKind = "invalid_ticker"
	NoticeInvalidMarket NoticeKind = "invalid_market"
)

// Notice is a short-lived message for the user (a toast). It is not part of
// PageState.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	At      time.Time  `json:"at"`
}

// Notifier receives notices raised by a page.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }
