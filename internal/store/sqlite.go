package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/tourbase/pricing-engine/internal/model"
	"github.com/tourbase/pricing-engine/internal/resilience"
)

// SQLiteStore implements RuleStore using modernc.org/sqlite. Monetary values
// are stored as TEXT to avoid float round-tripping.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS pricing_rules (
	id              TEXT PRIMARY KEY,
	organization_id TEXT NOT NULL,
	tenant_id       TEXT NOT NULL DEFAULT '',
	agency_id       TEXT NOT NULL DEFAULT '',
	supplier_id     TEXT NOT NULL DEFAULT '',
	product_id      TEXT NOT NULL DEFAULT '',
	tag             TEXT NOT NULL DEFAULT '',
	rule_type       TEXT NOT NULL,
	value           TEXT NOT NULL,
	priority        INTEGER NOT NULL DEFAULT 0,
	stackable       INTEGER NOT NULL DEFAULT 0,
	valid_from      DATETIME,
	valid_to        DATETIME,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS commission_rules (
	id               TEXT PRIMARY KEY,
	seller_tenant_id TEXT NOT NULL,
	buyer_tenant_id  TEXT NOT NULL DEFAULT '',
	scope_type       TEXT NOT NULL,
	product_id       TEXT NOT NULL DEFAULT '',
	tag              TEXT NOT NULL DEFAULT '',
	rule_type        TEXT NOT NULL,
	value            TEXT NOT NULL,
	priority         INTEGER NOT NULL DEFAULT 0,
	status           TEXT NOT NULL DEFAULT 'active',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
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

// Migrate creates the schema if it does not exist. SQLITE_BUSY from a
// concurrent writer is retried.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.RetryLogger("sqlite", "migrate")
	err := resilience.Do(ctx, policy, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, sqliteMigration)
		return err
	})
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) FindApplicableRules(ctx context.Context, orgID string, filter RuleFilter) ([]model.PricingRule, error) {
	// Coarse index-backed fetch by organization; scope compatibility is
	// re-checked row by row with the shared predicate.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, organization_id, tenant_id, agency_id, supplier_id, product_id, tag,
		        rule_type, value, priority, stackable, valid_from, valid_to, created_at
		 FROM pricing_rules WHERE organization_id = ?`,
		orgID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query pricing rules")
	}
	defer rows.Close()

	var out []model.PricingRule
	for rows.Next() {
		r, err := scanSQLiteRule(rows)
		if err != nil {
			return nil, err
		}
		if scopeCompatible(&r, filter) {
			out = append(out, r)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate pricing rules")
	}
	return out, nil
}

func scanSQLiteRule(rows *sql.Rows) (model.PricingRule, error) {
	var (
		r         model.PricingRule
		value     string
		stackable int
		validFrom sql.NullTime
		validTo   sql.NullTime
	)
	err := rows.Scan(
		&r.ID, &r.OrganizationID, &r.TenantID, &r.AgencyID, &r.SupplierID,
		&r.ProductID, &r.Tag, &r.RuleType, &value, &r.Priority, &stackable,
		&validFrom, &validTo, &r.CreatedAt,
	)
	if err != nil {
		return r, eris.Wrap(err, "sqlite: scan pricing rule")
	}
	r.Value, err = decimal.NewFromString(value)
	if err != nil {
		return r, eris.Wrapf(err, "sqlite: parse rule value %q", value)
	}
	r.Stackable = stackable != 0
	if validFrom.Valid {
		t := validFrom.Time
		r.ValidFrom = &t
	}
	if validTo.Valid {
		t := validTo.Time
		r.ValidTo = &t
	}
	return r, nil
}

func (s *SQLiteStore) FindCommissionRules(ctx context.Context, sellerTenantID string) ([]model.CommissionRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seller_tenant_id, buyer_tenant_id, scope_type, product_id, tag,
		        rule_type, value, priority, status, created_at
		 FROM commission_rules WHERE seller_tenant_id = ?`,
		sellerTenantID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query commission rules")
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
			return nil, eris.Wrap(err, "sqlite: scan commission rule")
		}
		r.Value, err = decimal.NewFromString(value)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse commission value %q", value)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate commission rules")
	}
	return out, nil
}

func (s *SQLiteStore) GetParentLink(ctx context.Context, orgID, tenantID string) (*string, error) {
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT parent_tenant_id FROM tenant_pricing_links WHERE organization_id = ? AND tenant_id = ?`,
		orgID, tenantID,
	).Scan(&parent)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get parent link %s", tenantID)
	}
	if !parent.Valid || parent.String == "" {
		return nil, nil
	}
	p := parent.String
	return &p, nil
}

func (s *SQLiteStore) ImportRules(ctx context.Context, rules []model.PricingRule) error {
	for _, r := range rules {
		var validFrom, validTo any
		if r.ValidFrom != nil {
			validFrom = r.ValidFrom.UTC()
		}
		if r.ValidTo != nil {
			validTo = r.ValidTo.UTC()
		}
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		stackable := 0
		if r.Stackable {
			stackable = 1
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO pricing_rules
			 (id, organization_id, tenant_id, agency_id, supplier_id, product_id, tag,
			  rule_type, value, priority, stackable, valid_from, valid_to, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.OrganizationID, r.TenantID, r.AgencyID, r.SupplierID, r.ProductID, r.Tag,
			string(r.RuleType), r.Value.String(), r.Priority, stackable, validFrom, validTo, createdAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: import rule %s", r.ID)
		}
	}
	return nil
}

func (s *SQLiteStore) ImportCommissionRules(ctx context.Context, rules []model.CommissionRule) error {
	for _, r := range rules {
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO commission_rules
			 (id, seller_tenant_id, buyer_tenant_id, scope_type, product_id, tag,
			  rule_type, value, priority, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.SellerTenantID, r.BuyerTenantID, string(r.ScopeType), r.ProductID, r.Tag,
			string(r.RuleType), r.Value.String(), r.Priority, string(r.Status), createdAt,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: import commission rule %s", r.ID)
		}
	}
	return nil
}

func (s *SQLiteStore) ImportLinks(ctx context.Context, links []model.TenantPricingLink) error {
	for _, l := range links {
		var parent any
		if l.ParentTenantID != nil {
			parent = *l.ParentTenantID
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT OR REPLACE INTO tenant_pricing_links (organization_id, tenant_id, parent_tenant_id)
			 VALUES (?, ?, ?)`,
			l.OrganizationID, l.TenantID, parent,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: import link %s", l.TenantID)
		}
	}
	return nil
}
