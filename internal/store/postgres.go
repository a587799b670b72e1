package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/resilience"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// for unit tests.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore implements RuleStore using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	// The pool connects lazily; ping with retry so a server still starting
	// up does not fail the process.
	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.RetryLogger("postgres", "ping")
	if err := resilience.Do(ctx, policy, pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS pricing_rules (
	id              TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	tenant_id       TEXT NOT NULL DEFAULT '',
	agency_id       TEXT NOT NULL DEFAULT '',
	supplier_id     TEXT NOT NULL DEFAULT '',
	product_id      TEXT NOT NULL DEFAULT '',
	tag             TEXT NOT NULL DEFAULT '',
	rule_type       TEXT NOT NULL,
	value           NUMERIC(12,4) NOT NULL,
	priority        INTEGER NOT NULL DEFAULT 0,
	stackable       BOOLEAN NOT NULL DEFAULT false,
	valid_from      TIMESTAMPTZ,
	valid_to        TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS commission_rules (
	id               TEXT PRIMARY KEY,
	seller_tenant_id TEXT NOT NULL,
	buyer_tenant_id  TEXT NOT NULL DEFAULT '',
	scope_type       TEXT NOT NULL,
	product_id       TEXT NOT NULL DEFAULT '',
	tag              TEXT NOT NULL DEFAULT '',
	rule_type        TEXT NOT NULL,
	value            NUMERIC(12,4) NOT NULL,
	priority         INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'active',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tenant_pricing_links (
	organization_id  TEXT NOT NULL,
	tenant_id        TEXT NOT NULL,
	parent_tenant_id TEXT,
	PRIMARY KEY (organization_id, tenant_id)
);

CREATE INDEX IF NOT EXISTS idx_pricing_rules_org ON pricing_rules(organization_id);
CREATE INDEX IF NOT EXISTS idx_pricing_rules_org_tenant ON pricing_rules(organization_id, tenant_id);
CREATE INDEX IF NOT EXISTS idx_commission_rules_seller ON commission_rules(seller_tenant_id);
`

// Migrate creates the schema if it does not exist. Concurrent deploys
// contend on the DDL locks, so transient failures are retried.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.RetryLogger("postgres", "migrate")
	err := resilience.Do(ctx, policy, func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, postgresMigration)
		return err
	})
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) FindApplicableRules(ctx context.Context, orgID string, filter RuleFilter) ([]model.PricingRule, error) {
	// Wildcard-or-equal predicate on the indexed scope columns; temporal and
	// priority resolution stay in the engine.
	query := `
SELECT id, organization_id, tenant_id, agency_id, supplier_id, product_id, tag,
       rule_type, value::text, priority, stackable, valid_from, valid_to, created_at
FROM pricing_rules
WHERE organization_id = $1
  AND (tenant_id = '' OR tenant_id = $2)
  AND (agency_id = '' OR agency_id = $3)
  AND (supplier_id = '' OR supplier_id = $4)
  AND (product_id = '' OR product_id = $5)
  AND (tag = '' OR tag = ANY($6))`
	args := []any{orgID, filter.TenantID, filter.AgencyID, filter.SupplierID, filter.ProductID, filter.Tags}

	if len(filter.RuleTypes) > 0 {
		query += ` AND rule_type = ANY($7)`
		types := make([]string, len(filter.RuleTypes))
		for i, t := range filter.RuleTypes {
			types[i] = string(t)
		}
		args = append(args, types)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query pricing rules")
	}
	defer rows.Close()

	var out []model.PricingRule
	for rows.Next() {
		var (
			r     model.PricingRule
			value string
		)
		err := rows.Scan(
			&r.ID, &r.OrganizationID, &r.TenantID, &r.AgencyID, &r.SupplierID,
			&r.ProductID, &r.Tag, &r.RuleType, &value, &r.Priority, &r.Stackable,
			&r.ValidFrom, &r.ValidTo, &r.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan pricing rule")
		}
		r.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: parse rule value %q", value)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate pricing rules")
	}
	return out, nil
}

func (s *PostgresStore) FindCommissionRules(ctx context.Context, sellerTenantID string) ([]model.CommissionRule, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, seller_tenant_id, buyer_tenant_id, scope_type, product_id, tag,
		        rule_type, value::text, priority, status, created_at
		 FROM commission_rules WHERE seller_tenant_id = $1`,
		sellerTenantID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query commission rules")
	}
	defer rows.Close()

	var out []model.CommissionRule
	for rows.Next() {
		var (
			r     model.CommissionRule
			value string
		)
		err := rows.Scan(
			&r.ID, &r.SellerTenantID, &r.BuyerTenantID, &r.ScopeType,
			&r.ProductID, &r.Tag, &r.RuleType, &value, &r.Priority,
			&r.Status, &r.CreatedAt,
		)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan commission rule")
		}
		r.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: parse commission value %q", value)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate commission rules")
	}
	return out, nil
}

func (s *PostgresStore) GetParentLink(ctx context.Context, orgID, tenantID string) (*string, error) {
	var parent *string
	err := s.pool.QueryRow(ctx,
		`SELECT parent_tenant_id FROM tenant_pricing_links WHERE organization_id = $1 AND tenant_id = $2`,
		orgID, tenantID,
	).Scan(&parent)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get parent link %s", tenantID)
	}
	if parent == nil || *parent == "" {
		return nil, nil
	}
	return parent, nil
}

func (s *PostgresStore) ImportRules(ctx context.Context, rules []model.PricingRule) error {
	for _, r := range rules {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO pricing_rules
			 (id, organization_id, tenant_id, agency_id, supplier_id, product_id, tag,
			  rule_type, value, priority, stackable, valid_from, valid_to, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (id) DO UPDATE SET
			   value = EXCLUDED.value, priority = EXCLUDED.priority,
			   stackable = EXCLUDED.stackable, valid_from = EXCLUDED.valid_from,
			   valid_to = EXCLUDED.valid_to`,
			r.ID, r.OrganizationID, r.TenantID, r.AgencyID, r.SupplierID, r.ProductID, r.Tag,
			string(r.RuleType), r.Value.String(), r.Priority, r.Stackable, r.ValidFrom, r.ValidTo, createdAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: import rule %s", r.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ImportCommissionRules(ctx context.Context, rules []model.CommissionRule) error {
	for _, r := range rules {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO commission_rules
			 (id, seller_tenant_id, buyer_tenant_id, scope_type, product_id, tag,
			  rule_type, value, priority, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO UPDATE SET
			   value = EXCLUDED.value, priority = EXCLUDED.priority, status = EXCLUDED.status`,
			r.ID, r.SellerTenantID, r.BuyerTenantID, string(r.ScopeType), r.ProductID, r.Tag,
			string(r.RuleType), r.Value.String(), r.Priority, string(r.Status), createdAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: import commission rule %s", r.ID)
		}
	}
	return nil
}

func (s *PostgresStore) ImportLinks(ctx context.Context, links []model.TenantPricingLink) error {
	for _, l := range links {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO tenant_pricing_links (organization_id, tenant_id, parent_tenant_id)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (organization_id, tenant_id) DO UPDATE SET parent_tenant_id = EXCLUDED.parent_tenant_id`,
			l.OrganizationID, l.TenantID, l.ParentTenantID,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: import link %s", l.TenantID)
		}
	}
	return nil
}
