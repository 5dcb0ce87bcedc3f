package service

import (
	"fmt"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// scopeRule derives the data scope for an allowed (role, operation) pair.
// A nil rule in the table is an explicit denial.
type scopeRule func(u *domain.User) domain.Scope

var deny scopeRule

func ownAsCustomer(u *domain.User) domain.Scope   { return domain.Scope{CustomerID: u.ID} }
func ownAsSoleTrader(u *domain.User) domain.Scope { return domain.Scope{SoleTraderID: u.ID} }
func self(u *domain.User) domain.Scope            { return domain.Scope{UserID: u.ID} }
func everything(*domain.User) domain.Scope        { return domain.Scope{All: true} }

func activeInOwnService(u *domain.User) domain.Scope {
	return domain.Scope{Service: u.ServiceOffered, ActiveOnly: true}
}

func ownServiceQuotes(u *domain.User) domain.Scope {
	return domain.Scope{SoleTraderID: u.ID, Service: u.ServiceOffered}
}

func soleTradersOnly(*domain.User) domain.Scope { return domain.Scope{SoleTradersOnly: true} }

// dispatchTable lists every (operation, role) pair. Every role must appear
// under every operation, with deny where the role has no access, so that a
// new role cannot slip through unreviewed.
var dispatchTable = map[domain.Operation]map[domain.Role]scopeRule{
	domain.OpListListings: {
		domain.RoleCustomer:   ownAsCustomer,
		domain.RoleSoleTrader: activeInOwnService,
		domain.RoleAdmin:      everything,
	},
	domain.OpCreateListing: {
		domain.RoleCustomer:   ownAsCustomer,
		domain.RoleSoleTrader: deny,
		domain.RoleAdmin:      deny,
	},
	domain.OpListQuotes: {
		domain.RoleCustomer:   ownAsCustomer,
		domain.RoleSoleTrader: ownAsSoleTrader,
		domain.RoleAdmin:      everything,
	},
	domain.OpViewQuote: {
		domain.RoleCustomer:   ownAsCustomer,
		domain.RoleSoleTrader: ownAsSoleTrader,
		domain.RoleAdmin:      everything,
	},
	domain.OpSubmitQuote: {
		domain.RoleCustomer:   deny,
		domain.RoleSoleTrader: ownServiceQuotes,
		domain.RoleAdmin:      deny,
	},
	domain.OpDecideQuote: {
		domain.RoleCustomer:   ownAsCustomer,
		domain.RoleSoleTrader: deny,
		domain.RoleAdmin:      deny,
	},
	domain.OpListUsers: {
		domain.RoleCustomer:   soleTradersOnly,
		domain.RoleSoleTrader: soleTradersOnly,
		domain.RoleAdmin:      everything,
	},
	domain.OpSubmitRating: {
		domain.RoleCustomer:   self,
		domain.RoleSoleTrader: self,
		domain.RoleAdmin:      self,
	},
	domain.OpViewRatings: {
		domain.RoleCustomer:   self,
		domain.RoleSoleTrader: self,
		domain.RoleAdmin:      self,
	},
	domain.OpViewProfile: {
		domain.RoleCustomer:   self,
		domain.RoleSoleTrader: self,
		domain.RoleAdmin:      self,
	},
}

// Policy decides, from a resolved identity and an operation, which data the
// caller may touch.
type Policy struct {
	table map[domain.Operation]map[domain.Role]scopeRule
}

func NewPolicy() *Policy {
	return &Policy{table: dispatchTable}
}

// Authorize returns the caller's scope for op. Anything not explicitly
// allowed by the table, including roles outside the defined set, yields
// domain.ErrForbidden.
func (p *Policy) Authorize(user *domain.User, op domain.Operation) (domain.Scope, error) {
	if user == nil {
		return domain.Scope{}, domain.ErrUnauthenticated
	}
	if !user.Role.Valid() {
		return domain.Scope{}, fmt.Errorf("%w: role %q", domain.ErrForbidden, user.Role)
	}
	rule := p.table[op][user.Role]
	if rule == nil {
		return domain.Scope{}, fmt.Errorf("%w: %s may not %s", domain.ErrForbidden, user.Role, op)
	}
	return rule(user), nil
}
