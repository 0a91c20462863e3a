package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"votesmart/internal/registry"
	"votesmart/pkg/platform/sentinel"
)

// Postgres persists the registry in PostgreSQL. Each entity table carries a
// pos sequence column so iteration order matches insertion order, and every
// insert is an idempotent upsert that keeps the row's original position.
// Identifiers are uint64 on the wire and stored as BIGINT; the int64
// conversion is bijective so values round-trip.
type Postgres struct {
	db *sql.DB
}

var _ registry.Store = (*Postgres)(nil)

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates all registry tables. Safe to call repeatedly.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure registry schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS registry_master (
    singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
    account_id TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaigns (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    pos BIGSERIAL
);

CREATE TABLE IF NOT EXISTS parties (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    pos BIGSERIAL
);

CREATE TABLE IF NOT EXISTS regions (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    pos BIGSERIAL
);

CREATE TABLE IF NOT EXISTS districts (
    id BIGINT PRIMARY KEY,
    region_id BIGINT NOT NULL,
    title TEXT NOT NULL,
    pos BIGSERIAL
);

CREATE TABLE IF NOT EXISTS candidates (
    id BIGINT PRIMARY KEY,
    title TEXT NOT NULL,
    party_id BIGINT NOT NULL,
    pos BIGSERIAL
);

CREATE TABLE IF NOT EXISTS recommendations (
    campaign_id BIGINT NOT NULL,
    district_id BIGINT NOT NULL,
    candidate_id BIGINT NOT NULL,
    PRIMARY KEY (campaign_id, district_id)
);
`

func (s *Postgres) MasterAccountID(ctx context.Context) (string, error) {
	var account string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id FROM registry_master WHERE singleton`).Scan(&account)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get master account: %w", err)
	}
	return account, nil
}

func (s *Postgres) SetMasterAccountID(ctx context.Context, account string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registry_master (singleton, account_id) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET account_id = EXCLUDED.account_id`,
		account)
	if err != nil {
		return fmt.Errorf("set master account: %w", err)
	}
	return nil
}

func (s *Postgres) EnsureMasterAccountID(ctx context.Context, account string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registry_master (singleton, account_id) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO NOTHING`,
		account)
	if err != nil {
		return fmt.Errorf("ensure master account: %w", err)
	}
	return nil
}

func (s *Postgres) PutCampaign(ctx context.Context, id uint64, title string) error {
	return s.putTitled(ctx, "campaigns", id, title)
}

func (s *Postgres) Campaigns(ctx context.Context) (registry.Table[string], error) {
	return s.titledTable(ctx, "campaigns")
}

func (s *Postgres) PutParty(ctx context.Context, id uint64, title string) error {
	return s.putTitled(ctx, "parties", id, title)
}

func (s *Postgres) Parties(ctx context.Context) (registry.Table[string], error) {
	return s.titledTable(ctx, "parties")
}

func (s *Postgres) Party(ctx context.Context, id uint64) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx,
		`SELECT title FROM parties WHERE id = $1`, int64(id)).Scan(&title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get party: %w", err)
	}
	return title, nil
}

func (s *Postgres) PutRegion(ctx context.Context, id uint64, region registry.Region) error {
	return s.putTitled(ctx, "regions", id, region.Title)
}

func (s *Postgres) Regions(ctx context.Context) (registry.Table[registry.Region], error) {
	titled, err := s.titledTable(ctx, "regions")
	if err != nil {
		return registry.Table[registry.Region]{}, err
	}
	table := registry.Table[registry.Region]{
		IDs:    titled.IDs,
		Values: make([]registry.Region, len(titled.Values)),
	}
	for i, title := range titled.Values {
		table.Values[i] = registry.Region{Title: title}
	}
	return table, nil
}

func (s *Postgres) PutDistrict(ctx context.Context, id uint64, district registry.District) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO districts (id, region_id, title) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET region_id = EXCLUDED.region_id, title = EXCLUDED.title`,
		int64(id), int64(district.RegionID), district.Title)
	if err != nil {
		return fmt.Errorf("put district: %w", err)
	}
	return nil
}

func (s *Postgres) Districts(ctx context.Context) (registry.Table[registry.District], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, region_id, title FROM districts ORDER BY pos`)
	if err != nil {
		return registry.Table[registry.District]{}, fmt.Errorf("list districts: %w", err)
	}
	defer rows.Close()

	var table registry.Table[registry.District]
	for rows.Next() {
		var id, regionID int64
		var title string
		if err := rows.Scan(&id, &regionID, &title); err != nil {
			return registry.Table[registry.District]{}, fmt.Errorf("scan district: %w", err)
		}
		table.IDs = append(table.IDs, uint64(id))
		table.Values = append(table.Values, registry.District{RegionID: uint64(regionID), Title: title})
	}
	if err := rows.Err(); err != nil {
		return registry.Table[registry.District]{}, fmt.Errorf("list districts: %w", err)
	}
	return table, nil
}

func (s *Postgres) PutCandidate(ctx context.Context, id uint64, candidate registry.Candidate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candidates (id, title, party_id) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, party_id = EXCLUDED.party_id`,
		int64(id), candidate.Title, int64(candidate.PartyID))
	if err != nil {
		return fmt.Errorf("put candidate: %w", err)
	}
	return nil
}

func (s *Postgres) Candidates(ctx context.Context) (registry.Table[registry.Candidate], error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, party_id FROM candidates ORDER BY pos`)
	if err != nil {
		return registry.Table[registry.Candidate]{}, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	var table registry.Table[registry.Candidate]
	for rows.Next() {
		var id, partyID int64
		var title string
		if err := rows.Scan(&id, &title, &partyID); err != nil {
			return registry.Table[registry.Candidate]{}, fmt.Errorf("scan candidate: %w", err)
		}
		table.IDs = append(table.IDs, uint64(id))
		table.Values = append(table.Values, registry.Candidate{Title: title, PartyID: uint64(partyID)})
	}
	if err := rows.Err(); err != nil {
		return registry.Table[registry.Candidate]{}, fmt.Errorf("list candidates: %w", err)
	}
	return table, nil
}

func (s *Postgres) Candidate(ctx context.Context, id uint64) (registry.Candidate, error) {
	var title string
	var partyID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT title, party_id FROM candidates WHERE id = $1`, int64(id)).Scan(&title, &partyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return registry.Candidate{}, sentinel.ErrNotFound
		}
		return registry.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}
	return registry.Candidate{Title: title, PartyID: uint64(partyID)}, nil
}

func (s *Postgres) PutRecommendation(ctx context.Context, key registry.Key, candidateID uint64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recommendations (campaign_id, district_id, candidate_id) VALUES ($1, $2, $3)
		ON CONFLICT (campaign_id, district_id) DO UPDATE SET candidate_id = EXCLUDED.candidate_id`,
		int64(key.CampaignID), int64(key.DistrictID), int64(candidateID))
	if err != nil {
		return fmt.Errorf("put recommendation: %w", err)
	}
	return nil
}

func (s *Postgres) RecommendationCandidate(ctx context.Context, key registry.Key) (uint64, error) {
	var candidateID int64
	err := s.db.QueryRowContext(ctx, `
		SELECT candidate_id FROM recommendations WHERE campaign_id = $1 AND district_id = $2`,
		int64(key.CampaignID), int64(key.DistrictID)).Scan(&candidateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("get recommendation: %w", err)
	}
	return uint64(candidateID), nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// putTitled covers the three tables that hold only an id and a title.
func (s *Postgres) putTitled(ctx context.Context, table string, id uint64, title string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, title) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`, table)
	if _, err := s.db.ExecContext(ctx, query, int64(id), title); err != nil {
		return fmt.Errorf("put %s row: %w", table, err)
	}
	return nil
}

func (s *Postgres) titledTable(ctx context.Context, table string) (registry.Table[string], error) {
	query := fmt.Sprintf(`SELECT id, title FROM %s ORDER BY pos`, table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return registry.Table[string]{}, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var result registry.Table[string]
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return registry.Table[string]{}, fmt.Errorf("scan %s row: %w", table, err)
		}
		result.IDs = append(result.IDs, uint64(id))
		result.Values = append(result.Values, title)
	}
	if err := rows.Err(); err != nil {
		return registry.Table[string]{}, fmt.Errorf("list %s: %w", table, err)
	}
	return result, nil
}
