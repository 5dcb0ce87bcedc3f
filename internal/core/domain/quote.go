package domain

import "time"

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuotePending: {QuoteAccepted, QuoteRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s QuoteStatus) Terminal() bool {
	return len(quoteTransitions[s]) == 0
}

// Quote is a sole trader's priced response to a listing.
type Quote struct {
	ID           string      `json:"id"`
	ListingID    string      `json:"listingId"`
	CustomerID   string      `json:"customerId"`
	SoleTraderID string      `json:"soleTraderId"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	Date         time.Time   `json:"date"`
	Status       QuoteStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// QuoteTransitionConflict is returned when q cannot move to next.
func QuoteTransitionConflict(id string, from, next QuoteStatus) error {
	return conflictf("quote %s cannot move from %s to %s", id, from, next)
}
