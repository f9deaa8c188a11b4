package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

func station(id int64, distanceM float64) models.EnrichedStation {
	return models.EnrichedStation{
		Station: models.Station{
			ID:        id,
			Name:      "Station",
			DistanceM: distanceM,
		},
		Amenities: []string{},
		Products:  []string{},
	}
}

func petrolStation(id int64, distanceM float64, price float64) models.EnrichedStation {
	s := station(id, distanceM)
	s.PetrolPrice = &price
	s.Products = []string{models.FuelPetrol}
	return s
}

func TestFuelTypeFilter(t *testing.T) {
	stations := []models.EnrichedStation{
		petrolStation(1, 500, 620),
		station(2, 800), // no products reported
	}

	criteria := models.DefaultCriteria()
	criteria.FuelType = models.FuelPetrol

	result := Apply(stations, criteria)
	require.Len(t, result, 1)
	assert.Equal(t, int64(1), result[0].ID)
}

func TestPriceRangeScopedToFuelType(t *testing.T) {
	// Station 1: petrol at 600, station 2: petrol at 550.
	stations := []models.EnrichedStation{
		petrolStation(1, 500, 600),
		petrolStation(2, 4200, 550),
	}

	criteria := models.DefaultCriteria()
	criteria.FuelType = models.FuelPetrol
	criteria.PriceRange = models.PriceRange{Min: "", Max: "580"}

	result := Apply(stations, criteria)
	require.Len(t, result, 1)
	assert.Equal(t, int64(2), result[0].ID)

	sections := Sectionize(result)
	require.Len(t, sections, 1)
	assert.Equal(t, "Within 8km", sections[0].Title)
	require.Len(t, sections[0].Stations, 1)
	assert.Equal(t, int64(2), sections[0].Stations[0].ID)
}

func TestPriceRangeExcludesPricelessStations(t *testing.T) {
	noPrice := station(1, 500)
	noPrice.Products = []string{models.FuelPetrol}

	criteria := models.DefaultCriteria()
	criteria.FuelType = models.FuelPetrol
	criteria.PriceRange = models.PriceRange{Min: "500"}

	assert.Empty(t, Apply([]models.EnrichedStation{noPrice}, criteria))
}

func TestMalformedPriceBoundsAreIgnored(t *testing.T) {
	stations := []models.EnrichedStation{petrolStation(1, 500, 9999)}

	criteria := models.DefaultCriteria()
	criteria.FuelType = models.FuelPetrol
	criteria.PriceRange = models.PriceRange{Min: "cheap", Max: "n/a"}

	// Neither bound parses, so the price range is inactive.
	assert.Len(t, Apply(stations, criteria), 1)
}

func TestRatingFilter(t *testing.T) {
	rated := func(id int64, avg *float64) models.EnrichedStation {
		s := station(id, 100)
		s.AverageRating = avg
		return s
	}

	stations := []models.EnrichedStation{
		rated(1, floatPtr(2.5)),
		rated(2, nil), // unrated counts as 0
		rated(3, floatPtr(4.0)),
	}

	criteria := models.DefaultCriteria()
	criteria.MinRating = 3

	result := Apply(stations, criteria)
	require.Len(t, result, 1)
	assert.Equal(t, int64(3), result[0].ID)
}

func TestRequiredAmenities(t *testing.T) {
	s1 := station(1, 100)
	s1.Amenities = []string{"ATM", "Car Wash", "POS"}
	s2 := station(2, 200)
	s2.Amenities = []string{"ATM"}

	criteria := models.DefaultCriteria()
	criteria.Amenities = []string{"ATM", "Car Wash"}

	result := Apply([]models.EnrichedStation{s1, s2}, criteria)
	require.Len(t, result, 1)
	assert.Equal(t, int64(1), result[0].ID)
}

func TestPriceSortAscendingWhenFuelAndRangeActive(t *testing.T) {
	stations := []models.EnrichedStation{
		petrolStation(1, 100, 650),
		petrolStation(2, 200, 590),
		petrolStation(3, 300, 620),
	}

	criteria := models.DefaultCriteria()
	criteria.FuelType = models.FuelPetrol
	criteria.PriceRange = models.PriceRange{Min: "0"}

	result := Apply(stations, criteria)
	require.Len(t, result, 3)
	assert.Equal(t, []int64{2, 3, 1}, ids(result))
}

func TestLastUpdateSortNewestFirst(t *testing.T) {
	now := time.Now()
	withUpdate := func(id int64, ts *time.Time) models.EnrichedStation {
		s := station(id, 100)
		s.LastUpdated = ts
		return s
	}

	stations := []models.EnrichedStation{
		withUpdate(1, timePtr(now.Add(-2*time.Hour))),
		withUpdate(2, nil), // missing timestamp sorts last
		withUpdate(3, timePtr(now)),
	}

	criteria := models.DefaultCriteria()
	criteria.SortBy = models.SortByLastUpdate

	result := Apply(stations, criteria)
	assert.Equal(t, []int64{3, 1, 2}, ids(result))
}

// The "distance" sort mode performs no reordering at this stage; the
// sectioner owns nearest-first ordering.
func TestDistanceModeRetainsFetchOrder(t *testing.T) {
	stations := []models.EnrichedStation{
		station(1, 900),
		station(2, 100),
		station(3, 500),
	}

	result := Apply(stations, models.DefaultCriteria())
	assert.Equal(t, []int64{1, 2, 3}, ids(result))
}

func TestApplyIsIdempotentAndPure(t *testing.T) {
	stations := []models.EnrichedStation{
		petrolStation(1, 100, 650),
		petrolStation(2, 200, 590),
		station(3, 300),
	}
	original := ids(stations)

	criteria := models.DefaultCriteria()
	criteria.FuelType = models.FuelPetrol
	criteria.PriceRange = models.PriceRange{Max: "700"}

	first := Apply(stations, criteria)
	second := Apply(stations, criteria)
	assert.Equal(t, first, second)

	// Input order untouched.
	assert.Equal(t, original, ids(stations))
}

func ids(stations []models.EnrichedStation) []int64 {
	out := make([]int64, len(stations))
	for i, s := range stations {
		out[i] = s.ID
	}
	return out
}

func timePtr(t time.Time) *time.Time { return &t }
