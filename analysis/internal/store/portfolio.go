package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Portfolio is the persisted anchor-type mix for a target domain, with the
// risk calculated at last save.
type Portfolio struct {
	TargetDomain   string  `json:"target_domain"`
	Exact          int     `json:"exact"`
	Partial        int     `json:"partial"`
	Brand          int     `json:"brand"`
	Generic        int     `json:"generic"`
	Risk           float64 `json:"risk"`
	RiskLevel      string  `json:"risk_level"`
	LastCalculated int64   `json:"last_calculated"`
}

// UpsertPortfolio inserts or replaces the portfolio for a target domain.
func (s *Store) UpsertPortfolio(ctx context.Context, p *Portfolio) error {
	p.LastCalculated = time.Now().UnixMilli()

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO anchor_portfolios (target_domain, exact, partial, brand, generic, risk, risk_level, last_calculated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(target_domain) DO UPDATE SET
			exact = excluded.exact,
			partial = excluded.partial,
			brand = excluded.brand,
			generic = excluded.generic,
			risk = excluded.risk,
			risk_level = excluded.risk_level,
			last_calculated = excluded.last_calculated`,
		p.TargetDomain, p.Exact, p.Partial, p.Brand, p.Generic, p.Risk, p.RiskLevel, p.LastCalculated)
	if err != nil {
		return fmt.Errorf("upsert portfolio: %w", err)
	}
	return nil
}

// GetPortfolio retrieves the portfolio for a target domain. Returns nil if absent.
func (s *Store) GetPortfolio(ctx context.Context, targetDomain string) (*Portfolio, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT target_domain, exact, partial, brand, generic, risk, risk_level, last_calculated
		FROM anchor_portfolios WHERE target_domain = ?`, targetDomain)

	var p Portfolio
	err := row.Scan(&p.TargetDomain, &p.Exact, &p.Partial, &p.Brand, &p.Generic, &p.Risk, &p.RiskLevel, &p.LastCalculated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get portfolio: %w", err)
	}
	return &p, nil
}
