package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Voice describes a publisher's editorial voice.
type Voice struct {
	Tone         string   `json:"tone"`
	Perspective  string   `json:"perspective"`
	StyleMarkers []string `json:"style_markers"`
}

// Policy describes a publisher's link policy for sponsored content.
type Policy struct {
	Nofollow     bool     `json:"nofollow"`
	Sponsored    bool     `json:"sponsored"`
	UGC          bool     `json:"ugc"`
	Restrictions []string `json:"restrictions"`
}

// Example is a representative published article used for voice matching.
type Example struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// Profile is a publisher voice profile keyed by publication domain.
type Profile struct {
	Domain    string    `json:"domain"`
	Voice     Voice     `json:"voice"`
	LixRange  string    `json:"lix_range"`
	Policy    Policy    `json:"policy"`
	Examples  []Example `json:"examples"`
	CreatedAt int64     `json:"created_at"`
	UpdatedAt int64     `json:"updated_at"`
}

// UpsertProfile inserts or replaces a publisher profile.
func (s *Store) UpsertProfile(ctx context.Context, p *Profile) error {
	voice, err := json.Marshal(p.Voice)
	if err != nil {
		return fmt.Errorf("marshal voice: %w", err)
	}
	policy, err := json.Marshal(p.Policy)
	if err != nil {
		return fmt.Errorf("marshal policy: %w", err)
	}
	examples := p.Examples
	if examples == nil {
		examples = []Example{}
	}
	exJSON, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("marshal examples: %w", err)
	}

	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO publisher_profiles (domain, voice, lix_range, policy, examples, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			voice = excluded.voice,
			lix_range = excluded.lix_range,
			policy = excluded.policy,
			examples = excluded.examples,
			updated_at = excluded.updated_at`,
		p.Domain, string(voice), p.LixRange, string(policy), string(exJSON), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// GetProfile retrieves a publisher profile by domain. Returns nil if absent.
func (s *Store) GetProfile(ctx context.Context, domain string) (*Profile, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT domain, voice, lix_range, policy, examples, created_at, updated_at
		FROM publisher_profiles WHERE domain = ?`, domain)

	var p Profile
	var voice, policy, examples string
	err := row.Scan(&p.Domain, &voice, &p.LixRange, &policy, &examples, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if err := json.Unmarshal([]byte(voice), &p.Voice); err != nil {
		return nil, fmt.Errorf("decode voice: %w", err)
	}
	if err := json.Unmarshal([]byte(policy), &p.Policy); err != nil {
		return nil, fmt.Errorf("decode policy: %w", err)
	}
	if err := json.Unmarshal([]byte(examples), &p.Examples); err != nil {
		return nil, fmt.Errorf("decode examples: %w", err)
	}
	return &p, nil
}

// DeleteProfile removes a publisher profile.
func (s *Store) DeleteProfile(ctx context.Context, domain string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM publisher_profiles WHERE domain = ?`, domain)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
