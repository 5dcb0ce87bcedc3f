package service

import (
	"errors"
	"testing"

	"github.com/tradelink/marketplace/internal/core/domain"
)

func TestDispatchTable_CoversEveryRoleAndOperation(t *testing.T) {
	for _, op := range domain.Operations() {
		rules, ok := dispatchTable[op]
		if !ok {
			t.Errorf("operation %s missing from dispatch table", op)
			continue
		}
		for _, role := range domain.Roles() {
			if _, ok := rules[role]; !ok {
				t.Errorf("role %s missing under operation %s", role, op)
			}
		}
		if len(rules) != len(domain.Roles()) {
			t.Errorf("operation %s lists %d roles, want %d", op, len(rules), len(domain.Roles()))
		}
	}
}

func TestPolicy_Authorize_Matrix(t *testing.T) {
	allowed := map[domain.Operation]map[domain.Role]bool{
		domain.OpListListings:  {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
		domain.OpCreateListing: {domain.RoleCustomer: true},
		domain.OpListQuotes:    {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
		domain.OpViewQuote:     {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
		domain.OpSubmitQuote:   {domain.RoleSoleTrader: true},
		domain.OpDecideQuote:   {domain.RoleCustomer: true},
		domain.OpListUsers:     {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
		domain.OpSubmitRating:  {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
		domain.OpViewRatings:   {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
		domain.OpViewProfile:   {domain.RoleCustomer: true, domain.RoleSoleTrader: true, domain.RoleAdmin: true},
	}

	p := NewPolicy()
	for _, op := range domain.Operations() {
		for _, role := range domain.Roles() {
			user := &domain.User{ID: "u1", Role: role, ServiceOffered: "plumbing"}
			_, err := p.Authorize(user, op)
			want := allowed[op][role]
			if want && err != nil {
				t.Errorf("%s/%s: expected allow, got %v", op, role, err)
			}
			if !want && !errors.Is(err, domain.ErrForbidden) {
				t.Errorf("%s/%s: expected ErrForbidden, got %v", op, role, err)
			}
		}
	}
}

func TestPolicy_Authorize_UnknownRoleDenied(t *testing.T) {
	p := NewPolicy()
	user := &domain.User{ID: "u1", Role: domain.Role("superuser")}

	for _, op := range domain.Operations() {
		if _, err := p.Authorize(user, op); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("%s: expected ErrForbidden for unknown role, got %v", op, err)
		}
	}
}

func TestPolicy_Authorize_NilIdentity(t *testing.T) {
	if _, err := NewPolicy().Authorize(nil, domain.OpListListings); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestPolicy_Authorize_UnknownOperationDenied(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleAdmin}
	if _, err := NewPolicy().Authorize(user, domain.Operation("delete_everything")); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestPolicy_Authorize_Scopes(t *testing.T) {
	p := NewPolicy()
	customer := &domain.User{ID: "c1", Role: domain.RoleCustomer}
	trader := &domain.User{ID: "t1", Role: domain.RoleSoleTrader, ServiceOffered: "plumbing"}
	admin := &domain.User{ID: "a1", Role: domain.RoleAdmin}

	scope, _ := p.Authorize(customer, domain.OpListListings)
	if scope.CustomerID != "c1" || scope.All || scope.ActiveOnly {
		t.Errorf("customer listing scope: %+v", scope)
	}

	scope, _ = p.Authorize(trader, domain.OpListListings)
	if !scope.ActiveOnly || scope.Service != "plumbing" {
		t.Errorf("sole trader listing scope: %+v", scope)
	}

	scope, _ = p.Authorize(admin, domain.OpListListings)
	if !scope.All {
		t.Errorf("admin listing scope: %+v", scope)
	}

	scope, _ = p.Authorize(trader, domain.OpListQuotes)
	if scope.SoleTraderID != "t1" {
		t.Errorf("sole trader quote scope: %+v", scope)
	}

	scope, _ = p.Authorize(customer, domain.OpListUsers)
	if !scope.SoleTradersOnly {
		t.Errorf("customer user scope: %+v", scope)
	}
}
