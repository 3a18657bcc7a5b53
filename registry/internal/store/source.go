package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Source is one citable trust domain.
type Source struct {
	ID         string `json:"id"`
	Domain     string `json:"domain"`
	TrustLevel string `json:"trust_level"` // "T1", "T2", "T3"
	Pattern    string `json:"pattern"`     // "government", "news", "encyclopedia", "academic"
	Competitor bool   `json:"competitor"`
	Notes      string `json:"notes,omitempty"`
	UsageCount int    `json:"usage_count"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

const sourceColumns = `id, domain, trust_level, pattern, competitor, notes, usage_count, created_at, updated_at`

// InsertSource inserts a new trust source.
func (s *Store) InsertSource(ctx context.Context, src *Source) error {
	now := time.Now().UnixMilli()
	if src.CreatedAt == 0 {
		src.CreatedAt = now
	}
	src.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO trust_sources
			(id, domain, trust_level, pattern, competitor, notes, usage_count, created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		src.ID, src.Domain, src.TrustLevel, src.Pattern, boolInt(src.Competitor),
		src.Notes, src.UsageCount, src.CreatedAt, src.UpdatedAt,
	)
	return err
}

// GetSource retrieves a source by ID.
func (s *Store) GetSource(ctx context.Context, id string) (*Source, error) {
	return s.getSource(ctx, `SELECT `+sourceColumns+` FROM trust_sources WHERE id = ?`, id)
}

// GetSourceByDomain retrieves a source by its domain.
func (s *Store) GetSourceByDomain(ctx context.Context, domain string) (*Source, error) {
	return s.getSource(ctx, `SELECT `+sourceColumns+` FROM trust_sources WHERE domain = ?`, domain)
}

func (s *Store) getSource(ctx context.Context, query string, arg any) (*Source, error) {
	src := &Source{}
	var competitor int

	err := s.DB.QueryRowContext(ctx, query, arg).Scan(
		&src.ID, &src.Domain, &src.TrustLevel, &src.Pattern, &competitor,
		&src.Notes, &src.UsageCount, &src.CreatedAt, &src.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	src.Competitor = competitor != 0
	return src, nil
}

// ListSources returns non-deleted sources filtered by trust level,
// excluding competitors unless asked otherwise. Ordered by trust level
// then usage so the most-cited authorities come first.
func (s *Store) ListSources(ctx context.Context, levels []string, includeCompetitors bool, limit int) ([]*Source, error) {
	query := `SELECT ` + sourceColumns + ` FROM trust_sources`
	var (
		clauses []string
		args    []any
	)
	if len(levels) > 0 {
		placeholders := strings.Repeat("?,", len(levels))
		clauses = append(clauses, `trust_level IN (`+placeholders[:len(placeholders)-1]+`)`)
		for _, l := range levels {
			args = append(args, l)
		}
	}
	if !includeCompetitors {
		clauses = append(clauses, `competitor = 0`)
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY trust_level ASC, usage_count DESC, domain ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSources(rows)
}

// UpdateSource updates a source's level, pattern, competitor flag and notes.
func (s *Store) UpdateSource(ctx context.Context, src *Source) error {
	src.UpdatedAt = time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
		UPDATE trust_sources SET
			domain=?, trust_level=?, pattern=?, competitor=?, notes=?, updated_at=?
		WHERE id=?`,
		src.Domain, src.TrustLevel, src.Pattern, boolInt(src.Competitor),
		src.Notes, src.UpdatedAt, src.ID,
	)
	return err
}

// DeleteSource removes a source by ID.
func (s *Store) DeleteSource(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM trust_sources WHERE id = ?`, id)
	return err
}

// MarkCompetitor flags or unflags a domain as a competitor. Competitor
// domains are never offered as trust sources.
func (s *Store) MarkCompetitor(ctx context.Context, domain string, competitor bool) error {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
		UPDATE trust_sources SET competitor = ?, updated_at = ?
		WHERE domain = ?`, boolInt(competitor), now, domain)
	return err
}

// IncrementUsage bumps usage_count for a source after it is placed in a
// plan.
func (s *Store) IncrementUsage(ctx context.Context, domain string) error {
	now := time.Now().UnixMilli()
	_, err := s.DB.ExecContext(ctx, `
		UPDATE trust_sources SET usage_count = usage_count + 1, updated_at = ?
		WHERE domain = ?`, now, domain)
	return err
}

// CountSources returns the total number of sources and how many are
// competitors.
func (s *Store) CountSources(ctx context.Context) (total, competitors int, err error) {
	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(competitor), 0) FROM trust_sources`).Scan(&total, &competitors)
	return total, competitors, err
}

func scanSources(rows *sql.Rows) ([]*Source, error) {
	var sources []*Source
	for rows.Next() {
		src := &Source{}
		var competitor int
		if err := rows.Scan(
			&src.ID, &src.Domain, &src.TrustLevel, &src.Pattern, &competitor,
			&src.Notes, &src.UsageCount, &src.CreatedAt, &src.UpdatedAt,
		); err != nil {
			return nil, err
		}
		src.Competitor = competitor != 0
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
