package domain

// Operation names a protected action the authorization policy can rule on.
type Operation string

const (
	OpListListings  Operation = "list_listings"
	OpCreateListing Operation = "create_listing"
	OpListQuotes    Operation = "list_quotes"
	OpViewQuote     Operation = "view_quote"
	OpSubmitQuote   Operation = "submit_quote"
	OpDecideQuote   Operation = "decide_quote"
	OpListUsers     Operation = "list_users"
	OpSubmitRating  Operation = "submit_rating"
	OpViewRatings   Operation = "view_ratings"
	OpViewProfile   Operation = "view_profile"
)

// Operations returns every defined operation.
func Operations() []Operation {
	return []Operation{
		OpListListings,
		OpCreateListing,
		OpListQuotes,
		OpViewQuote,
		OpSubmitQuote,
		OpDecideQuote,
		OpListUsers,
		OpSubmitRating,
		OpViewRatings,
		OpViewProfile,
	}
}

// Scope is the slice of data an identity may read or mutate for one
// operation. Empty string fields impose no restriction; All lifts every
// restriction.
type Scope struct {
	All             bool
	CustomerID      string
	SoleTraderID    string
	UserID          string
	Service         string
	ActiveOnly      bool
	SoleTradersOnly bool
}

// PermitsQuote reports whether q falls inside the scope.
func (s Scope) PermitsQuote(q *Quote) bool {
	if q == nil {
		return false
	}
	if s.All {
		return true
	}
	if s.CustomerID != "" && q.CustomerID == s.CustomerID {
		return true
	}
	return s.SoleTraderID != "" && q.SoleTraderID == s.SoleTraderID
}
