package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

func enriched(id int64, petrol *float64, diesel *float64, brand *models.Brand) models.EnrichedStation {
	return models.EnrichedStation{
		Station: models.Station{
			ID:          id,
			PetrolPrice: petrol,
			DieselPrice: diesel,
		},
		Brand: brand,
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestDerive(t *testing.T) {
	oando := &models.Brand{Name: "Oando"}
	results := []models.EnrichedStation{
		enriched(1, floatPtr(600), nil, oando),
		enriched(2, floatPtr(550), floatPtr(1040), oando),
		enriched(3, floatPtr(650), nil, nil),
	}

	stats := Derive(results, 25)
	require.NotNil(t, stats)

	assert.Equal(t, 550.0, stats.LowestPrice[models.FuelPetrol])
	assert.Equal(t, 650.0, stats.HighestPrice[models.FuelPetrol])
	assert.Equal(t, 600.0, stats.AveragePrice[models.FuelPetrol])
	assert.Equal(t, []int64{2}, stats.CheapestStations[models.FuelPetrol])

	assert.Equal(t, 1040.0, stats.LowestPrice[models.FuelDiesel])
	assert.NotContains(t, stats.StandardDeviation, models.FuelDiesel, "single sample has no deviation")

	assert.Equal(t, map[string]int{
		"550-574": 1,
		"600-624": 1,
		"650-674": 1,
	}, stats.PriceDistribution[models.FuelPetrol])

	assert.Equal(t, map[string]int{"Oando": 2}, stats.BrandDistribution)
}

func TestDeriveEmptyResults(t *testing.T) {
	stats := Derive(nil, 0)
	require.NotNil(t, stats)
	assert.Empty(t, stats.LowestPrice)
	assert.Empty(t, stats.BrandDistribution)
}
