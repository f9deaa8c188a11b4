package search

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

// Apply filters the enriched list against the criteria and orders the
// survivors. Pure function: the input slice is never mutated and repeated
// invocations with the same arguments yield identical output.
//
// Ordering rules: when a fuel type and an active price range are both
// set, the result is sorted ascending by that fuel's snapshot price with
// priceless stations pushed to the end. Otherwise "last_update" sorts
// newest-first. The "distance" mode deliberately leaves fetch order
// untouched; nearest-first ordering is owned by Sectionize.
func Apply(stations []models.EnrichedStation, criteria models.FilterCriteria) []models.EnrichedStation {
	minPrice, minOK := parseBound(criteria.PriceRange.Min)
	maxPrice, maxOK := parseBound(criteria.PriceRange.Max)
	priceRangeActive := minOK || maxOK

	filtered := make([]models.EnrichedStation, 0, len(stations))
	for _, station := range stations {
		if !matches(&station, criteria, priceRangeActive, minPrice, minOK, maxPrice, maxOK) {
			continue
		}
		filtered = append(filtered, station)
	}

	switch {
	case criteria.FuelType != "" && priceRangeActive:
		sort.SliceStable(filtered, func(i, j int) bool {
			return priceOrSentinel(&filtered[i], criteria.FuelType) < priceOrSentinel(&filtered[j], criteria.FuelType)
		})
	case criteria.SortBy == models.SortByLastUpdate:
		sort.SliceStable(filtered, func(i, j int) bool {
			return lastUpdatedOrZero(&filtered[i]).After(lastUpdatedOrZero(&filtered[j]))
		})
	}

	return filtered
}

// matches evaluates the filter conditions as independent ANDs,
// short-circuiting on the first failure.
func matches(station *models.EnrichedStation, criteria models.FilterCriteria,
	priceRangeActive bool, minPrice float64, minOK bool, maxPrice float64, maxOK bool) bool {

	if criteria.FuelType != "" && !containsString(station.Products, criteria.FuelType) {
		return false
	}

	if priceRangeActive && criteria.FuelType != "" {
		price := station.PriceFor(criteria.FuelType)
		if price == nil {
			return false
		}
		if minOK && *price < minPrice {
			return false
		}
		if maxOK && *price > maxPrice {
			return false
		}
	}

	if criteria.MinRating > 0 {
		rating := 0.0
		if station.AverageRating != nil {
			rating = *station.AverageRating
		}
		if rating < float64(criteria.MinRating) {
			return false
		}
	}

	for _, required := range criteria.Amenities {
		if !containsString(station.Amenities, required) {
			return false
		}
	}

	return true
}

// parseBound treats unparseable price text as "no bound", never an error.
func parseBound(text string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func priceOrSentinel(station *models.EnrichedStation, fuelType string) float64 {
	if price := station.PriceFor(fuelType); price != nil {
		return *price
	}
	return math.MaxFloat64
}

func lastUpdatedOrZero(station *models.EnrichedStation) time.Time {
	if station.LastUpdated != nil {
		return *station.LastUpdated
	}
	return time.Time{}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
