package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/reelcove/reelcove/internal/cache"
	"github.com/reelcove/reelcove/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	cfg := config.TMDBConfig{
		APIKey:        "test-api-key",
		BaseURL:       server.URL,
		ImageBaseURL:  "https://image.tmdb.org/t/p",
		Timeout:       5,
		ShortCacheTTL: 3600,
		LongCacheTTL:  3600,
	}
	return NewClient(cfg, cache.NewMemoryStore(), zerolog.Nop())
}

func TestClient_IsConfigured(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   bool
	}{
		{"with key", "abc123", true},
		{"without key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(config.TMDBConfig{APIKey: tt.apiKey}, cache.NewMemoryStore(), zerolog.Nop())
			if got := client.IsConfigured(); got != tt.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Discover_QueryShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/movie" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		q := r.URL.Query()
		if got := q.Get("sort_by"); got != "primary_release_date.desc" {
			t.Errorf("sort_by = %q, want primary_release_date.desc", got)
		}
		if got := q.Get("with_original_language"); got != "fr" {
			t.Errorf("with_original_language = %q, want fr", got)
		}
		if got := q.Get("with_genres"); got != "28" {
			t.Errorf("with_genres = %q, want 28", got)
		}
		if got := q.Get("with_text_query"); got != "matrix" {
			t.Errorf("with_text_query = %q, want matrix", got)
		}
		if got := q.Get("include_adult"); got != "false" {
			t.Errorf("include_adult = %q, want false", got)
		}
		if got := q.Get("page"); got != "3" {
			t.Errorf("page = %q, want 3", got)
		}

		json.NewEncoder(w).Encode(Page{Page: 3, TotalPages: 10})
	}))
	defer server.Close()

	client := newTestClient(server)
	result, err := client.Discover(context.Background(), KindMovie, "fr", 3, SortReleaseDate, 28, "matrix", DiscoverFilters{})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if result.Page != 3 {
		t.Errorf("Page = %d, want 3", result.Page)
	}
	if result.TotalPages != 10 {
		t.Errorf("TotalPages = %d, want 10", result.TotalPages)
	}
}

func TestClient_Discover_SortTranslationForTV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/tv" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("sort_by"); got != "first_air_date.desc" {
			t.Errorf("sort_by = %q, want first_air_date.desc", got)
		}
		json.NewEncoder(w).Encode(Page{Page: 1})
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.Discover(context.Background(), KindTV, "", 1, SortReleaseDate, 0, "", DiscoverFilters{}); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
}

func TestClient_Discover_VoteFloor(t *testing.T) {
	zero := 0
	fifty := 50

	tests := []struct {
		name      string
		kind      string
		sortBy    SortBy
		filters   DiscoverFilters
		wantFloor string // "" means parameter absent
	}{
		{"movie default floor on vote sort", KindMovie, SortVoteAverage, DiscoverFilters{}, "300"},
		{"tv default floor on vote sort", KindTV, SortVoteAverage, DiscoverFilters{}, "100"},
		{"no floor on popularity sort", KindMovie, SortPopularity, DiscoverFilters{}, ""},
		{"explicit floor used verbatim", KindMovie, SortVoteAverage, DiscoverFilters{MinVoteCount: &fifty}, "50"},
		{"explicit zero overrides default", KindMovie, SortVoteAverage, DiscoverFilters{MinVoteCount: &zero}, "0"},
		{"explicit floor without vote sort", KindTV, SortPopularity, DiscoverFilters{MinVoteCount: &fifty}, "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if tt.wantFloor == "" {
					if q.Has("vote_count.gte") {
						t.Errorf("vote_count.gte = %q, want absent", q.Get("vote_count.gte"))
					}
				} else if got := q.Get("vote_count.gte"); got != tt.wantFloor {
					t.Errorf("vote_count.gte = %q, want %q", got, tt.wantFloor)
				}
				json.NewEncoder(w).Encode(Page{Page: 1})
			}))
			defer server.Close()

			client := newTestClient(server)
			if _, err := client.Discover(context.Background(), tt.kind, "", 1, tt.sortBy, 0, "", tt.filters); err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
		})
	}
}

func TestClient_Discover_ReleaseDateWidening(t *testing.T) {
	from, to := 1990, 1999

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("primary_release_date.gte"); got != "1990-01-01" {
			t.Errorf("primary_release_date.gte = %q, want 1990-01-01", got)
		}
		if got := q.Get("primary_release_date.lte"); got != "1999-12-31" {
			t.Errorf("primary_release_date.lte = %q, want 1999-12-31", got)
		}
		json.NewEncoder(w).Encode(Page{Page: 1})
	}))
	defer server.Close()

	client := newTestClient(server)
	filters := DiscoverFilters{ReleaseDateFrom: &from, ReleaseDateTo: &to}
	if _, err := client.Discover(context.Background(), KindMovie, "", 1, SortPopularity, 0, "", filters); err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
}

func TestClient_Discover_SecondCallIsCached(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(Page{Page: 2, Results: []ListItem{{ID: 1, Title: "A"}}})
	}))
	defer server.Close()

	client := newTestClient(server)
	filters := DiscoverFilters{IncludeAdult: true}

	for i := 0; i < 2; i++ {
		result, err := client.Discover(context.Background(), KindMovie, "de", 2, SortPopularity, 18, "krimi", filters)
		if err != nil {
			t.Fatalf("Discover() call %d error = %v", i+1, err)
		}
		if len(result.Results) != 1 || result.Results[0].Title != "A" {
			t.Errorf("call %d returned unexpected results: %+v", i+1, result.Results)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("upstream hit %d times, want 1 (second call must be served from cache)", hits.Load())
	}
}

func TestDiscoverCacheKey_Deterministic(t *testing.T) {
	min := 7.5
	count := 100
	filters := DiscoverFilters{IncludeAdult: true, MinVoteAverage: &min, MinVoteCount: &count}

	a := discoverCacheKey(KindMovie, "en", 2, "popularity.desc", 18, "noir", filters)
	b := discoverCacheKey(KindMovie, "en", 2, "popularity.desc", 18, "noir", filters)
	if a != b {
		t.Errorf("identical queries produced different keys:\n%s\n%s", a, b)
	}

	c := discoverCacheKey(KindMovie, "en", 3, "popularity.desc", 18, "noir", filters)
	if a == c {
		t.Error("different pages must not share a cache key")
	}

	d := discoverCacheKey(KindMovie, "en", 2, "popularity.desc", 18, "noir", DiscoverFilters{IncludeAdult: true, MinVoteAverage: &min})
	if a == d {
		t.Error("different filter sets must not share a cache key")
	}
}

func TestClient_GetLanguages_SortedByEnglishName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration/languages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]Language{
			{ISO639_1: "sv", EnglishName: "Swedish"},
			{ISO639_1: "de", EnglishName: "German"},
			{ISO639_1: "fr", EnglishName: "French"},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	languages, err := client.GetLanguages(context.Background())
	if err != nil {
		t.Fatalf("GetLanguages() error = %v", err)
	}

	want := []string{"French", "German", "Swedish"}
	for i, lang := range languages {
		if lang.EnglishName != want[i] {
			t.Errorf("languages[%d] = %q, want %q", i, lang.EnglishName, want[i])
		}
	}
}

func TestClient_ResolveGenreID(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/genre/movie/list" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(genreListResponse{Genres: []Genre{
			{ID: 28, Name: "Action"},
			{ID: 878, Name: "Science Fiction"},
		}})
	}))
	defer server.Close()

	client := newTestClient(server)
	ctx := context.Background()

	id, ok, err := client.ResolveGenreID(ctx, KindMovie, "Science Fiction")
	if err != nil {
		t.Fatalf("ResolveGenreID() error = %v", err)
	}
	if !ok || id != 878 {
		t.Errorf("ResolveGenreID() = (%d, %v), want (878, true)", id, ok)
	}

	// Case-sensitive exact match: lowercase must not resolve.
	_, ok, err = client.ResolveGenreID(ctx, KindMovie, "science fiction")
	if err != nil {
		t.Fatalf("ResolveGenreID() error = %v", err)
	}
	if ok {
		t.Error("lowercase name resolved; match must be case-sensitive")
	}

	// Both lookups share the cached genre table.
	if hits.Load() != 1 {
		t.Errorf("upstream hit %d times, want 1", hits.Load())
	}
}

func TestClient_GetMovieDetails(t *testing.T) {
	poster := "/poster.jpg"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits,videos" {
			t.Errorf("append_to_response = %q, want credits,videos", got)
		}
		json.NewEncoder(w).Encode(MovieDetails{
			ID:            603,
			Title:         "The Matrix",
			OriginalTitle: "The Matrix",
			ReleaseDate:   "1999-03-30",
			Runtime:       136,
			IMDBID:        "tt0133093",
			PosterPath:    &poster,
			VoteAverage:   8.2,
			Credits: &Credits{
				Cast: []CastMember{{Name: "Keanu Reeves", Order: 0}},
				Crew: []CrewMember{{Name: "Lana Wachowski", Job: "Director"}},
			},
			Videos: &videoList{Results: []Video{
				{Key: "vKQi3bBA1y8", Site: "YouTube", Type: "Trailer"},
				{Key: "ignored", Site: "Vimeo", Type: "Trailer"},
				{Key: "ignored", Site: "YouTube", Type: "Teaser"},
			}},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	details, err := client.GetMovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("GetMovieDetails() error = %v", err)
	}

	if details.IMDBID != "tt0133093" {
		t.Errorf("IMDBID = %q, want tt0133093", details.IMDBID)
	}
	trailers := details.Trailers()
	if len(trailers) != 1 || trailers[0] != "vKQi3bBA1y8" {
		t.Errorf("Trailers() = %v, want [vKQi3bBA1y8] (YouTube trailers only)", trailers)
	}
}

func TestClient_GetShowDetails_Appends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1396" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "external_ids,credits,videos" {
			t.Errorf("append_to_response = %q, want external_ids,credits,videos", got)
		}
		json.NewEncoder(w).Encode(ShowDetails{
			ID:             1396,
			Name:           "Breaking Bad",
			FirstAirDate:   "2008-01-20",
			LastAirDate:    "2013-09-29",
			EpisodeRunTime: []int{45, 47},
			ExternalIDs:    &ExternalIDs{IMDBID: "tt0903747"},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	details, err := client.GetShowDetails(context.Background(), 1396)
	if err != nil {
		t.Fatalf("GetShowDetails() error = %v", err)
	}
	if details.ExternalIDs == nil || details.ExternalIDs.IMDBID != "tt0903747" {
		t.Errorf("ExternalIDs = %+v, want imdb tt0903747", details.ExternalIDs)
	}
}

func TestClient_GetAccountList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/77/watchlist/movies" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if got := q.Get("session_id"); got != "sess-1" {
			t.Errorf("session_id = %q, want sess-1", got)
		}
		if got := q.Get("page"); got != "2" {
			t.Errorf("page = %q, want 2", got)
		}
		json.NewEncoder(w).Encode(Page{Page: 2, Results: []ListItem{{ID: 11, Title: "Heat"}}})
	}))
	defer server.Close()

	client := newTestClient(server)
	result, err := client.GetAccountList(context.Background(), ListWatchlist, KindMovie, 77, "sess-1", 2)
	if err != nil {
		t.Fatalf("GetAccountList() error = %v", err)
	}
	if len(result.Results) != 1 || result.Results[0].Title != "Heat" {
		t.Errorf("unexpected results: %+v", result.Results)
	}
}

func TestClient_GetAccountList_RatedTVPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/account/5/rated/tv" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Page{Page: 1})
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.GetAccountList(context.Background(), ListRated, KindTV, 5, "s", 1); err != nil {
		t.Fatalf("GetAccountList() error = %v", err)
	}
}

func TestClient_GetCustomList_Cached(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/list/8234" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(CustomList{
			ID:    8234,
			Name:  "Heist Movies",
			Items: []ListItem{{ID: 949, Title: "Heat", MediaType: "movie"}},
		})
	}))
	defer server.Close()

	client := newTestClient(server)
	for i := 0; i < 2; i++ {
		list, err := client.GetCustomList(context.Background(), "8234", 1)
		if err != nil {
			t.Fatalf("GetCustomList() error = %v", err)
		}
		if list.Name != "Heist Movies" {
			t.Errorf("Name = %q, want Heist Movies", list.Name)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("upstream hit %d times, want 1", hits.Load())
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(ErrorResponse{StatusCode: 1, StatusMessage: "nope"})
			}))
			defer server.Close()

			client := newTestClient(server)
			_, err := client.GetMovieDetails(context.Background(), 1)
			if err != tt.wantErr {
				t.Errorf("GetMovieDetails() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_NoAPIKey(t *testing.T) {
	client := NewClient(config.TMDBConfig{}, cache.NewMemoryStore(), zerolog.Nop())
	_, err := client.Discover(context.Background(), KindMovie, "", 1, SortPopularity, 0, "", DiscoverFilters{})
	if err != ErrAPIKeyMissing {
		t.Errorf("Discover() error = %v, want %v", err, ErrAPIKeyMissing)
	}
}

func TestClient_ImageURL(t *testing.T) {
	client := NewClient(config.TMDBConfig{ImageBaseURL: "https://image.tmdb.org/t/p"}, cache.NewMemoryStore(), zerolog.Nop())

	tests := []struct {
		path string
		size string
		want string
	}{
		{"/abc.jpg", "w500", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"", "w500", ""},
	}

	for _, tt := range tests {
		if got := client.ImageURL(tt.path, tt.size); got != tt.want {
			t.Errorf("ImageURL(%q, %q) = %q, want %q", tt.path, tt.size, got, tt.want)
		}
	}
}
