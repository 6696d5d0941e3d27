package addon

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/reelcove/reelcove/internal/tmdb"
)

// enrichConcurrency bounds the per-page detail fan-out against the upstream.
const enrichConcurrency = 5

// maxCast is how many top-billed cast members a meta carries.
const maxCast = 5

// enrich fetches the rich detail record for every id and maps it to the
// client wire shape. Results keep the input order; the first detail failure
// fails the whole page.
func (b *Builder) enrich(ctx context.Context, kind MediaKind, ids []int) (*CatalogPage, error) {
	metas := make([]Meta, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			var (
				meta Meta
				err  error
			)
			switch kind {
			case KindMovie:
				var details *tmdb.MovieDetails
				details, err = b.discovery.GetMovieDetails(gctx, id)
				if err == nil {
					meta = b.movieMeta(details)
				}
			case KindSeries:
				var details *tmdb.ShowDetails
				details, err = b.discovery.GetShowDetails(gctx, id)
				if err == nil {
					meta = b.showMeta(details)
				}
			default:
				err = ErrInvalidKind
			}
			if err != nil {
				return fmt.Errorf("enrich %s %d: %w", kind, id, err)
			}
			metas[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CatalogPage{Metas: metas}, nil
}

func (b *Builder) movieMeta(d *tmdb.MovieDetails) Meta {
	return Meta{
		ID:          metaID(d.IMDBID, d.ID),
		Type:        string(KindMovie),
		Name:        d.Title,
		Poster:      b.posterURL(d.PosterPath),
		Description: d.Overview,
		IMDBID:      d.IMDBID,
		Genres:      genreNames(d.Genres),
		ReleaseInfo: yearOf(d.ReleaseDate),
		Director:    directors(d.Credits),
		Cast:        topCast(d.Credits),
		IMDBRating:  formatRating(d.VoteAverage),
		Trailers:    trailers(d.Trailers()),
		Runtime:     formatRuntime(d.Runtime),
		Language:    d.OriginalLanguage,
		Country:     countryNames(d.ProductionCountries),
	}
}

func (b *Builder) showMeta(d *tmdb.ShowDetails) Meta {
	imdbID := ""
	if d.ExternalIDs != nil {
		imdbID = d.ExternalIDs.IMDBID
	}

	runtime := 0
	if len(d.EpisodeRunTime) > 0 {
		runtime = d.EpisodeRunTime[0]
	}

	return Meta{
		ID:          metaID(imdbID, d.ID),
		Type:        string(KindSeries),
		Name:        d.Name,
		Poster:      b.posterURL(d.PosterPath),
		Description: d.Overview,
		IMDBID:      imdbID,
		Genres:      genreNames(d.Genres),
		ReleaseInfo: airedYears(d.FirstAirDate, d.LastAirDate),
		Director:    directors(d.Credits),
		Cast:        topCast(d.Credits),
		IMDBRating:  formatRating(d.VoteAverage),
		Trailers:    trailers(d.Trailers()),
		Runtime:     formatRuntime(runtime),
		Language:    d.OriginalLanguage,
		Country:     countryNames(d.ProductionCountries),
	}
}

// metaID prefers the IMDB id; titles without one are addressed by their
// upstream id under a "tmdb:" prefix.
func metaID(imdbID string, id int) string {
	if imdbID != "" {
		return imdbID
	}
	return "tmdb:" + strconv.Itoa(id)
}

func (b *Builder) posterURL(path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return b.discovery.ImageURL(*path, "w500")
}

func genreNames(genres []tmdb.Genre) []string {
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}
	return names
}

func directors(c *tmdb.Credits) []string {
	if c == nil {
		return []string{}
	}
	var names []string
	for _, crew := range c.Crew {
		if crew.Job == "Director" {
			names = append(names, crew.Name)
		}
	}
	if names == nil {
		return []string{}
	}
	return names
}

// topCast returns the top-billed cast names in billing order.
func topCast(c *tmdb.Credits) []string {
	if c == nil {
		return []string{}
	}
	cast := make([]tmdb.CastMember, len(c.Cast))
	copy(cast, c.Cast)
	sort.SliceStable(cast, func(i, j int) bool { return cast[i].Order < cast[j].Order })
	if len(cast) > maxCast {
		cast = cast[:maxCast]
	}
	names := make([]string, len(cast))
	for i, member := range cast {
		names[i] = member.Name
	}
	return names
}

func formatRating(vote float64) string {
	if vote == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", vote)
}

func trailers(keys []string) []Trailer {
	out := make([]Trailer, len(keys))
	for i, key := range keys {
		out[i] = Trailer{Source: key, Type: "Trailer"}
	}
	return out
}

// formatRuntime renders minutes as "Xh Ym", trimming zero units. An unknown
// runtime renders as "N/A".
func formatRuntime(minutes int) string {
	if minutes <= 0 {
		return "N/A"
	}
	hours := minutes / 60
	mins := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
}

// yearOf extracts the year from an ISO date string.
func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// airedYears renders a show's run as "first-last"; an identical or missing
// last year collapses to the first year alone.
func airedYears(firstAirDate, lastAirDate string) string {
	first := yearOf(firstAirDate)
	last := yearOf(lastAirDate)
	if first == "" {
		return ""
	}
	if last == "" || last == first {
		return first
	}
	return first + "-" + last
}

func countryNames(countries []tmdb.ProductionCountry) string {
	names := make([]string, len(countries))
	for i, c := range countries {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
