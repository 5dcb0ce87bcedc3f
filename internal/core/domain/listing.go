package domain

import "time"

// ListingStatus represents the lifecycle state of a listing.
type ListingStatus string

const (
	ListingActive   ListingStatus = "active"
	ListingComplete ListingStatus = "complete"
)

var listingTransitions = map[ListingStatus][]ListingStatus{
	ListingActive: {ListingComplete},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	for _, allowed := range listingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Listing is a customer's posted service request.
type Listing struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customerId"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	ServiceRequired string        `json:"serviceRequired"`
	Status          ListingStatus `json:"status"`
	Location        string        `json:"location"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// ListingClosed is returned when a listing is no longer active.
func ListingClosed(id string) error {
	return conflictf("listing %s is %s", id, ListingComplete)
}
