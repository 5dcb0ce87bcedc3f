package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating is an append-only peer rating.
type Rating struct {
	ID          string    `json:"id"`
	ReceiverID  string    `json:"receiverId"`
	SenderID    string    `json:"senderId"`
	Value       int       `json:"rating"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidateRatingValue rejects values outside [MinRating, MaxRating].
func ValidateRatingValue(v int) error {
	if v < MinRating || v > MaxRating {
		return NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}
