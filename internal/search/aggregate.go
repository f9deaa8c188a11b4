package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

// NormalizeFuelTag maps a free-form fuel tag from a crowd-sourced report
// onto a canonical product name. Matching is case-insensitive on
// substrings; unrecognized tags are passed through with the first letter
// capitalized.
func NormalizeFuelTag(tag string) string {
	lower := strings.ToLower(tag)
	switch {
	case strings.Contains(lower, "pms") || strings.Contains(lower, "petrol"):
		return models.FuelPetrol
	case strings.Contains(lower, "gas"):
		return models.FuelGas
	case strings.Contains(lower, "diesel") || strings.Contains(lower, "ago"):
		return models.FuelDiesel
	case strings.Contains(lower, "kerosine") || strings.Contains(lower, "dpk"):
		return models.FuelKerosine
	default:
		return capitalize(tag)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Aggregate reduces a raw report log into per-station aggregates in a
// single pass. Aggregates depend only on the rows passed in: they are
// recomputed from scratch on every search, never updated incrementally.
func Aggregate(reports []models.Report) map[int64]models.Aggregate {
	ratingSum := make(map[int64]int)
	ratingCount := make(map[int64]int)
	amenities := make(map[int64]map[string]struct{})
	products := make(map[int64]map[string]struct{})

	for _, report := range reports {
		id := report.StationID

		if report.Rating != nil && *report.Rating >= 1 && *report.Rating <= 5 {
			ratingSum[id] += *report.Rating
			ratingCount[id]++
		}

		for _, amenity := range report.AmenitiesAdded {
			addToSet(amenities, id, amenity)
		}
		for _, payment := range report.PaymentMethodsAdded {
			addToSet(amenities, id, payment)
		}

		if report.FuelType != nil && report.FuelPrice != nil &&
			NormalizeFuelTag(*report.FuelType) == models.FuelPetrol {
			addToSet(products, id, models.FuelPetrol)
		}
		for otherFuel := range report.OtherFuelPrices {
			// Recorded as given, not normalized.
			addToSet(products, id, otherFuel)
		}
	}

	aggregates := make(map[int64]models.Aggregate)
	for _, report := range reports {
		id := report.StationID
		if _, ok := aggregates[id]; ok {
			continue
		}

		agg := models.Aggregate{
			Amenities: sortedKeys(amenities[id]),
			Products:  sortedKeys(products[id]),
		}
		if count := ratingCount[id]; count > 0 {
			avg := float64(ratingSum[id]) / float64(count)
			agg.AverageRating = &avg
		}
		aggregates[id] = agg
	}

	return aggregates
}

func addToSet(sets map[int64]map[string]struct{}, id int64, value string) {
	if sets[id] == nil {
		sets[id] = make(map[string]struct{})
	}
	sets[id][value] = struct{}{}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
