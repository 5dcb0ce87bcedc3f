package domain

import "time"

// ActivityType classifies an audit log entry.
type ActivityType string

const (
	ActivityUserRegistered  ActivityType = "user_registered"
	ActivityListingCreated  ActivityType = "listing_created"
	ActivityQuoteSubmitted  ActivityType = "quote_submitted"
	ActivityQuoteAccepted   ActivityType = "quote_accepted"
	ActivityQuoteRejected   ActivityType = "quote_rejected"
	ActivityRatingSubmitted ActivityType = "rating_submitted"
)

// Activity records a completed lifecycle mutation.
type Activity struct {
	ID          string
	Type        ActivityType
	ActorID     string
	SubjectID   string
	Description string
	CreatedAt   time.Time
}
