package configstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelcove/reelcove/internal/addon"
	"github.com/reelcove/reelcove/internal/database"
	"github.com/reelcove/reelcove/internal/tmdb"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db.Conn()
}

func TestGetConfig(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`
		INSERT INTO catalog_configs
			(id, owner, name, media_kind, languages, sort, source,
			 include_adult, min_vote_average, min_vote_count,
			 release_date_from, release_date_to)
		VALUES ('cfg1', 'alice', 'Top Movies', 'movie', '["en","fr"]',
			'vote_average.desc', 'discover', 1, 7.5, 0, 1990, 1999)`)
	require.NoError(t, err)

	store := NewStore(db, zerolog.Nop())
	cfg, err := store.GetConfig(context.Background(), "cfg1")
	require.NoError(t, err)

	assert.Equal(t, "cfg1", cfg.ID)
	assert.Equal(t, "alice", cfg.Owner)
	assert.Equal(t, addon.KindMovie, cfg.MediaKind)
	assert.Equal(t, []string{"en", "fr"}, cfg.Languages)
	assert.Equal(t, tmdb.SortVoteAverage, cfg.Sort)
	assert.Equal(t, addon.SourceDiscover, cfg.Source)
	assert.True(t, cfg.Filters.IncludeAdult)
	require.NotNil(t, cfg.Filters.MinVoteAverage)
	assert.Equal(t, 7.5, *cfg.Filters.MinVoteAverage)
	// An explicit zero survives as an explicit zero, not as "unset".
	require.NotNil(t, cfg.Filters.MinVoteCount)
	assert.Equal(t, 0, *cfg.Filters.MinVoteCount)
	require.NotNil(t, cfg.Filters.ReleaseDateFrom)
	assert.Equal(t, 1990, *cfg.Filters.ReleaseDateFrom)
	require.NotNil(t, cfg.Filters.ReleaseDateTo)
	assert.Equal(t, 1999, *cfg.Filters.ReleaseDateTo)
}

func TestGetConfigListFields(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`
		INSERT INTO catalog_configs (id, owner, name, media_kind, source, list_kind)
		VALUES ('wl', 'alice', 'Watchlist', 'series', 'trakt-list', 'watchlist')`)
	require.NoError(t, err)
	_, err = db.Exec(`
		INSERT INTO catalog_configs (id, owner, name, media_kind, source, list_id)
		VALUES ('cl', 'alice', 'Curated', 'movie', 'tmdb-list', '8283')`)
	require.NoError(t, err)

	store := NewStore(db, zerolog.Nop())

	cfg, err := store.GetConfig(context.Background(), "wl")
	require.NoError(t, err)
	assert.Equal(t, addon.ListWatchlist, cfg.ListKind)
	assert.Empty(t, cfg.ListID)
	assert.Nil(t, cfg.Filters.MinVoteCount)

	cfg, err = store.GetConfig(context.Background(), "cl")
	require.NoError(t, err)
	assert.Equal(t, "8283", cfg.ListID)
	assert.Empty(t, cfg.ListKind)
}

func TestGetConfigNotFound(t *testing.T) {
	store := NewStore(newTestDB(t), zerolog.Nop())
	_, err := store.GetConfig(context.Background(), "missing")
	assert.ErrorIs(t, err, addon.ErrConfigNotFound)
}

func TestTMDBCredentials(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`
		INSERT INTO integrations (owner, tmdb_account_id, tmdb_session_id, trakt_access_token)
		VALUES ('alice', 42, 'sess-1', 'trakt-tok'),
		       ('bob', NULL, NULL, NULL)`)
	require.NoError(t, err)

	store := NewStore(db, zerolog.Nop())

	creds, err := store.TMDBCredentials(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, creds)
	assert.Equal(t, 42, creds.AccountID)
	assert.Equal(t, "sess-1", creds.SessionID)

	// Incomplete pair or missing row both resolve to nil without error.
	creds, err = store.TMDBCredentials(context.Background(), "bob")
	require.NoError(t, err)
	assert.Nil(t, creds)

	creds, err = store.TMDBCredentials(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, creds)
}

func TestTraktToken(t *testing.T) {
	db := newTestDB(t)
	_, err := db.Exec(`
		INSERT INTO integrations (owner, trakt_access_token) VALUES ('alice', 'tok-1')`)
	require.NoError(t, err)

	store := NewStore(db, zerolog.Nop())

	token, err := store.TraktToken(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	token, err = store.TraktToken(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, token)
}
