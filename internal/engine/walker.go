package engine

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultMaxPathHops bounds the tenant hierarchy walk. Links are supposed to
// form a forest, but the walker does not trust them.
const DefaultMaxPathHops = 10

// ParentLookup resolves one tenant's parent link; nil means no parent.
type ParentLookup interface {
	GetParentLink(ctx context.Context, orgID, tenantID string) (*string, error)
}

// ResolvePath walks the buyer's ancestor chain (buyer, parent, grandparent,
// ...). A repeated tenant id or more than maxHops hops truncates the walk and
// returns the path accumulated so far; maxHops <= 0 means DefaultMaxPathHops.
// A store error returns the partial path alongside the error so the caller
// can degrade.
func ResolvePath(ctx context.Context, links ParentLookup, orgID, buyerTenantID string, maxHops int) ([]string, error) {
	if maxHops <= 0 {
		maxHops = DefaultMaxPathHops
	}

	path := []string{buyerTenantID}
	seen := map[string]bool{buyerTenantID: true}

	current := buyerTenantID
	for hop := 0; hop < maxHops; hop++ {
		parent, err := links.GetParentLink(ctx, orgID, current)
		if err != nil {
			return path, eris.Wrapf(err, "engine: parent link for %s", current)
		}
		if parent == nil {
			return path, nil
		}
		if seen[*parent] {
			zap.L().Warn("engine: tenant hierarchy cycle detected, truncating walk",
				zap.String("organization_id", orgID),
				zap.String("tenant_id", *parent),
				zap.Int("path_len", len(path)),
			)
			return path, nil
		}
		seen[*parent] = true
		path = append(path, *parent)
		current = *parent
	}

	zap.L().Warn("engine: tenant hierarchy exceeds hop bound, truncating walk",
		zap.String("organization_id", orgID),
		zap.String("buyer_tenant_id", buyerTenantID),
		zap.Int("max_hops", maxHops),
	)
	return path, nil
}
