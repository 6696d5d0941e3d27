// Package configstore reads stored catalog configurations and upstream
// credentials from the database. It is a read-only backing for the addon
// layer; writes happen out of band.
package configstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/reelcove/reelcove/internal/addon"
	"github.com/reelcove/reelcove/internal/tmdb"
)

// Store resolves catalog configs and integration credentials.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewStore creates a config store.
func NewStore(db *sql.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "configstore").Logger(),
	}
}

// GetConfig resolves a catalog configuration by id.
func (s *Store) GetConfig(ctx context.Context, id string) (*addon.CatalogConfig, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, owner, name, media_kind, languages, sort, source,
		       list_id, list_kind, include_adult,
		       min_vote_average, min_vote_count,
		       release_date_from, release_date_to
		FROM catalog_configs
		WHERE id = ?`, id)

	var (
		cfg          addon.CatalogConfig
		languages    string
		listID       sql.NullString
		listKind     sql.NullString
		includeAdult bool
		voteAverage  sql.NullFloat64
		voteCount    sql.NullInt64
		yearFrom     sql.NullInt64
		yearTo       sql.NullInt64
	)
	err := row.Scan(&cfg.ID, &cfg.Owner, &cfg.Name, &cfg.MediaKind, &languages,
		&cfg.Sort, &cfg.Source, &listID, &listKind, &includeAdult,
		&voteAverage, &voteCount, &yearFrom, &yearTo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, addon.ErrConfigNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog config %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(languages), &cfg.Languages); err != nil {
		return nil, fmt.Errorf("failed to decode languages for config %s: %w", id, err)
	}

	cfg.ListID = listID.String
	cfg.ListKind = addon.ListKind(listKind.String)

	cfg.Filters = tmdb.DiscoverFilters{IncludeAdult: includeAdult}
	if voteAverage.Valid {
		v := voteAverage.Float64
		cfg.Filters.MinVoteAverage = &v
	}
	if voteCount.Valid {
		v := int(voteCount.Int64)
		cfg.Filters.MinVoteCount = &v
	}
	if yearFrom.Valid {
		v := int(yearFrom.Int64)
		cfg.Filters.ReleaseDateFrom = &v
	}
	if yearTo.Valid {
		v := int(yearTo.Int64)
		cfg.Filters.ReleaseDateTo = &v
	}

	return &cfg, nil
}

// TMDBCredentials resolves the owner's TMDB session pair. A missing row or
// an incomplete pair resolves to nil, which the addon layer treats as "not
// connected".
func (s *Store) TMDBCredentials(ctx context.Context, owner string) (*addon.TMDBCredentials, error) {
	var (
		accountID sql.NullInt64
		sessionID sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT tmdb_account_id, tmdb_session_id FROM integrations WHERE owner = ?`,
		owner).Scan(&accountID, &sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load integrations for %s: %w", owner, err)
	}

	if !accountID.Valid || !sessionID.Valid || sessionID.String == "" {
		return nil, nil
	}
	return &addon.TMDBCredentials{
		AccountID: int(accountID.Int64),
		SessionID: sessionID.String,
	}, nil
}

// TraktToken resolves the owner's Trakt access token; empty when not
// connected.
func (s *Store) TraktToken(ctx context.Context, owner string) (string, error) {
	var token sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT trakt_access_token FROM integrations WHERE owner = ?`,
		owner).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load integrations for %s: %w", owner, err)
	}
	return token.String, nil
}
