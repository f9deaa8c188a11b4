package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

func TestEnrichKeepsAllStations(t *testing.T) {
	candidates := []models.Station{
		{ID: 1, Name: "Oando Lekki", DistanceM: 400},
		{ID: 2, Name: "Unbranded Filling Station", DistanceM: 900},
	}

	reports := []models.Report{
		{StationID: 1, Rating: intPtr(4), AmenitiesAdded: []string{"ATM"}},
		{StationID: 1, FuelType: strPtr("PMS"), FuelPrice: floatPtr(615), ReportedAt: time.Now()},
	}

	enriched := Enrich(candidates, Aggregate(reports), nil)
	require.Len(t, enriched, 2)

	require.NotNil(t, enriched[0].AverageRating)
	assert.InDelta(t, 4.0, *enriched[0].AverageRating, 1e-9)
	assert.Equal(t, []string{"ATM"}, enriched[0].Amenities)
	assert.Equal(t, []string{models.FuelPetrol}, enriched[0].Products)

	// Station with no reports keeps empty aggregate defaults.
	assert.Nil(t, enriched[1].AverageRating)
	assert.Empty(t, enriched[1].Amenities)
	assert.Empty(t, enriched[1].Products)
}

func TestEnrichProductUnionProperty(t *testing.T) {
	candidates := []models.Station{{ID: 7}}
	reports := []models.Report{
		{StationID: 7, FuelType: strPtr("PMS"), FuelPrice: floatPtr(620)},
		{StationID: 7, OtherFuelPrices: map[string]float64{"Diesel": 1040, "Kerosine": 950}},
	}

	enriched := Enrich(candidates, Aggregate(reports), nil)
	require.Len(t, enriched, 1)
	assert.ElementsMatch(t, []string{models.FuelPetrol, "Diesel", "Kerosine"}, enriched[0].Products)
}

func TestEnrichResolvesBrand(t *testing.T) {
	oando := &models.Brand{Name: "Oando", Url: "https://www.oandoplc.com"}
	resolver := func(name string) *models.Brand {
		if name == "Oando Lekki" {
			return oando
		}
		return nil
	}

	candidates := []models.Station{
		{ID: 1, Name: "Oando Lekki"},
		{ID: 2, Name: "Roadside Fuels"},
	}

	enriched := Enrich(candidates, nil, resolver)
	require.Len(t, enriched, 2)
	assert.Equal(t, oando, enriched[0].Brand)
	assert.Nil(t, enriched[1].Brand)
}
