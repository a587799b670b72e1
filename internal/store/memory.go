package store

import (
	"context"
	"sync"

	"github.com/tourbase/pricing-engine/internal/model"
)

// MemoryStore is an in-memory RuleStore used by tests and the CLI's memory
// driver. Safe for concurrent use.
type MemoryStore struct {
	mu              sync.RWMutex
	rules           []model.PricingRule
	commissionRules []model.CommissionRule
	links           map[string]map[string]*string // orgID -> tenantID -> parent
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{links: make(map[string]map[string]*string)}
}

func (s *MemoryStore) FindApplicableRules(ctx context.Context, orgID string, filter RuleFilter) ([]model.PricingRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PricingRule
	for i := range s.rules {
		r := s.rules[i]
		if r.OrganizationID != orgID {
			continue
		}
		if !scopeCompatible(&r, filter) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) FindCommissionRules(ctx context.Context, sellerTenantID string) ([]model.CommissionRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.CommissionRule
	for i := range s.commissionRules {
		if s.commissionRules[i].SellerTenantID == sellerTenantID {
			out = append(out, s.commissionRules[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) GetParentLink(ctx context.Context, orgID, tenantID string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byTenant, ok := s.links[orgID]
	if !ok {
		return nil, nil
	}
	parent, ok := byTenant[tenantID]
	if !ok || parent == nil {
		return nil, nil
	}
	p := *parent
	return &p, nil
}

func (s *MemoryStore) ImportRules(ctx context.Context, rules []model.PricingRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rules...)
	return nil
}

func (s *MemoryStore) ImportCommissionRules(ctx context.Context, rules []model.CommissionRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commissionRules = append(s.commissionRules, rules...)
	return nil
}

func (s *MemoryStore) ImportLinks(ctx context.Context, links []model.TenantPricingLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range links {
		byTenant, ok := s.links[l.OrganizationID]
		if !ok {
			byTenant = make(map[string]*string)
			s.links[l.OrganizationID] = byTenant
		}
		if l.ParentTenantID != nil {
			p := *l.ParentTenantID
			byTenant[l.TenantID] = &p
		} else {
			byTenant[l.TenantID] = nil
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
