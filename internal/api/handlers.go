package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/reelcove/reelcove/internal/addon"
	"github.com/reelcove/reelcove/internal/tmdb"
)

func (s *Server) getManifest(c echo.Context) error {
	ctx := c.Request().Context()

	cfg, err := s.configs.GetConfig(ctx, c.Param("configID"))
	if err != nil {
		return addonError(err)
	}

	manifest, err := s.builder.BuildManifest(ctx, cfg)
	if err != nil {
		return addonError(err)
	}
	return c.JSON(http.StatusOK, manifest)
}

func (s *Server) getCatalog(c echo.Context) error {
	return s.serveCatalog(c, "")
}

func (s *Server) getCatalogWithExtras(c echo.Context) error {
	return s.serveCatalog(c, strings.TrimSuffix(c.Param("extras"), ".json"))
}

func (s *Server) serveCatalog(c echo.Context, extras string) error {
	ctx := c.Request().Context()

	cfg, err := s.configs.GetConfig(ctx, c.Param("configID"))
	if err != nil {
		return addonError(err)
	}

	req := addon.CatalogRequest{
		Kind:      mediaKindFromType(c.Param("type")),
		CatalogID: strings.TrimSuffix(c.Param("id"), ".json"),
	}

	if extras != "" {
		values, err := url.ParseQuery(extras)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed extras segment")
		}
		req.Genre = values.Get("genre")
		req.Search = values.Get("search")
		if skip := values.Get("skip"); skip != "" {
			n, err := strconv.Atoi(skip)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Malformed skip value")
			}
			req.Skip = n
		}
	}

	page, err := s.builder.BuildCatalog(ctx, cfg, req)
	if err != nil {
		return addonError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// mediaKindFromType maps the client path type to a media kind. Discover
// catalogs use a branded type like "ReelCove-Top Movies"; those are always
// resolved from the catalog id, so any unrecognized type defaults by the
// series marker.
func mediaKindFromType(t string) addon.MediaKind {
	t = strings.TrimSuffix(t, ".json")
	switch t {
	case "series", "tv":
		return addon.KindSeries
	case "movie":
		return addon.KindMovie
	default:
		// Branded discover types carry their kind in the stored config;
		// the builder validates against it. Treat unknown as movie here
		// and let config-level kind checks answer mismatches.
		return addon.KindMovie
	}
}

// addonError translates domain errors to HTTP status codes: unknown config
// is 404, caller mistakes are 400, upstream trouble is 502.
func addonError(err error) error {
	switch {
	case errors.Is(err, addon.ErrConfigNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Catalog configuration not found")
	case errors.Is(err, addon.ErrInvalidKind), errors.Is(err, addon.ErrUnknownGenre), errors.Is(err, addon.ErrUnknownSource):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, tmdb.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Title not found upstream")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, "Upstream request failed")
	}
}

func (s *Server) getLanguages(c echo.Context) error {
	languages, err := s.tmdb.GetLanguages(c.Request().Context())
	if err != nil {
		return addonError(err)
	}
	return c.JSON(http.StatusOK, languages)
}

func (s *Server) getGenres(c echo.Context) error {
	kind := tmdb.KindMovie
	if c.QueryParam("kind") == "series" || c.QueryParam("kind") == "tv" {
		kind = tmdb.KindTV
	}
	genres, err := s.tmdb.GetGenres(c.Request().Context(), kind)
	if err != nil {
		return addonError(err)
	}
	return c.JSON(http.StatusOK, genres)
}

type sortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (s *Server) getSortOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, []sortOption{
		{Value: string(tmdb.SortPopularity), Label: "Popularity"},
		{Value: string(tmdb.SortReleaseDate), Label: "Release date"},
		{Value: string(tmdb.SortVoteAverage), Label: "Rating"},
	})
}
