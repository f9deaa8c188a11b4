package routes

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	memoize "github.com/kofalt/go-memoize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/fuelscout/fuelscout-api/internal"
	"github.com/fuelscout/fuelscout-api/internal/brands"
	"github.com/fuelscout/fuelscout-api/internal/filters"
	"github.com/fuelscout/fuelscout-api/internal/models"
	"github.com/fuelscout/fuelscout-api/internal/search"
	"github.com/fuelscout/fuelscout-api/internal/stats"
)

const statsBucketSize = 25

var searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fuelscout_searches_total",
	Help: "Number of station searches, by outcome",
}, []string{"outcome"})

type searchParams struct {
	term     string
	origin   models.Location
	radiusM  float64
	criteria models.FilterCriteria
	store    *filters.Store
}

// Search runs the full pipeline: candidate fetch, report aggregation,
// enrichment, filtering/sorting and distance sectioning. Candidate
// fetches are memoized briefly since map-driven clients tend to repeat
// the same query in quick succession.
func Search(repo internal.StationsRepository, brandMap brands.Brands, sessions *filters.Manager) gin.HandlerFunc {
	cache := memoize.NewMemoizer(60*time.Second, 5*time.Minute)

	return func(c *gin.Context) {
		params, err := parseSearchParams(c, sessions)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Sequence the search before any fetch so a slow response can be
		// recognized as stale at commit time.
		var seq uint64
		if params.store != nil {
			seq = params.store.BeginSearch()
		}

		candidates, err, _ := memoize.Call(cache, candidateKey(params), func() ([]models.Station, error) {
			return repo.SearchCandidates(params.term, params.origin, params.radiusM)
		})
		if err != nil {
			log.Printf("error while fetching candidate stations: %v", err)
			searchesTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		var favouriteIDs []int64
		if params.store != nil {
			favouriteIDs = params.store.Favourites()
		}

		// The candidate id set is known; the report fetch and the
		// favourite-station fetch have no ordering dependency between
		// them and run concurrently.
		var reports []models.Report
		var favouriteStations []models.Station

		g := new(errgroup.Group)
		g.Go(func() error {
			var err error
			reports, err = repo.ReportsForStations(unionIDs(candidates, favouriteIDs))
			return err
		})
		if len(favouriteIDs) > 0 {
			g.Go(func() error {
				var err error
				favouriteStations, err = repo.StationsByID(favouriteIDs)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			log.Printf("error while fetching reports: %v", err)
			searchesTotal.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		aggregates := search.Aggregate(reports)
		enriched := search.Enrich(candidates, aggregates, brandMap.Match)
		filtered := search.Apply(enriched, params.criteria)

		response := models.SearchResponse{
			Sections:    search.Sectionize(filtered),
			Favourites:  search.Enrich(favouriteStations, aggregates, brandMap.Match),
			Total:       len(filtered),
			Statistics:  stats.Derive(filtered, statsBucketSize),
			Attribution: internal.ATTRIBUTION,
		}

		if params.store != nil {
			if !params.store.CommitResults(seq, &response) {
				log.Printf("discarding stale search results (seq=%d)", seq)
			}
		}

		searchesTotal.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, response)
	}
}

// parseSearchParams builds the pipeline inputs from the query string,
// layered over the session's stored criteria when a session is named.
// Filter values are taken as-is: malformed price text downgrades to "no
// bound" further down the pipeline rather than erroring here.
func parseSearchParams(c *gin.Context, sessions *filters.Manager) (searchParams, error) {
	params := searchParams{
		term:     c.Query("q"),
		radiusM:  internal.DefaultRadiusM,
		criteria: models.DefaultCriteria(),
	}

	if sessionID := c.Query("session"); sessionID != "" && sessions != nil {
		params.store = sessions.Get(sessionID)
		params.criteria = params.store.Criteria()
		if loc := params.store.Location(); loc != nil {
			params.origin = *loc
		}
	}

	var err error
	if latStr := c.Query("lat"); latStr != "" {
		params.origin.Latitude, err = strconv.ParseFloat(latStr, 64)
		if err != nil {
			return params, errors.New("invalid lat parameter")
		}
	}
	if lngStr := c.Query("lng"); lngStr != "" {
		params.origin.Longitude, err = strconv.ParseFloat(lngStr, 64)
		if err != nil {
			return params, errors.New("invalid lng parameter")
		}
	}
	if radiusStr := c.Query("radius"); radiusStr != "" {
		params.radiusM, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || params.radiusM <= 0 {
			return params, errors.New("invalid radius parameter")
		}
	}

	if fuelType := c.Query("fuel_type"); fuelType != "" {
		params.criteria.FuelType = fuelType
	}
	if minPrice, ok := c.GetQuery("min_price"); ok {
		params.criteria.PriceRange.Min = minPrice
	}
	if maxPrice, ok := c.GetQuery("max_price"); ok {
		params.criteria.PriceRange.Max = maxPrice
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		if rating, err := strconv.Atoi(minRating); err == nil {
			params.criteria.MinRating = rating
		}
	}
	if amenities := c.Query("amenities"); amenities != "" {
		params.criteria.Amenities = strings.Split(amenities, ",")
	}
	if sortBy := c.Query("sort"); sortBy != "" {
		params.criteria.SortBy = sortBy
	}

	return params, nil
}

func candidateKey(params searchParams) string {
	return fmt.Sprintf("%s|%.5f|%.5f|%.0f", params.term, params.origin.Latitude, params.origin.Longitude, params.radiusM)
}

func unionIDs(candidates []models.Station, favouriteIDs []int64) []int64 {
	seen := make(map[int64]struct{}, len(candidates)+len(favouriteIDs))
	ids := make([]int64, 0, len(candidates)+len(favouriteIDs))
	for _, station := range candidates {
		if _, ok := seen[station.ID]; !ok {
			seen[station.ID] = struct{}{}
			ids = append(ids, station.ID)
		}
	}
	for _, id := range favouriteIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}
