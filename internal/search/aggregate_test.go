package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestNormalizeFuelTag(t *testing.T) {
	cases := map[string]string{
		"PMS":           models.FuelPetrol,
		"pms":           models.FuelPetrol,
		"Premium (PMS)": models.FuelPetrol,
		"petrol":        models.FuelPetrol,
		"Gas":           models.FuelGas,
		"cooking gas":   models.FuelGas,
		"Diesel":        models.FuelDiesel,
		"AGO":           models.FuelDiesel,
		"ago":           models.FuelDiesel,
		"DPK":           models.FuelKerosine,
		"Kerosine":      models.FuelKerosine,
		"ethanol":       "Ethanol",
		"":              "",
	}

	for tag, expected := range cases {
		assert.Equal(t, expected, NormalizeFuelTag(tag), "tag %q", tag)
	}
}

func TestAggregatePetrolReportsWithoutRatings(t *testing.T) {
	reports := []models.Report{
		{StationID: 1, FuelType: strPtr("PMS"), FuelPrice: floatPtr(620), ReportedAt: time.Now()},
		{StationID: 1, FuelType: strPtr("PMS"), FuelPrice: floatPtr(600), ReportedAt: time.Now()},
	}

	aggregates := Aggregate(reports)
	require.Contains(t, aggregates, int64(1))

	agg := aggregates[1]
	assert.Equal(t, []string{models.FuelPetrol}, agg.Products)
	assert.Nil(t, agg.AverageRating)
}

func TestAggregateMeanRating(t *testing.T) {
	reports := []models.Report{
		{StationID: 2, Rating: intPtr(4)},
		{StationID: 2, Rating: intPtr(5)},
		{StationID: 2, Rating: intPtr(0)}, // out of range, ignored
		{StationID: 2, Rating: intPtr(6)}, // out of range, ignored
		{StationID: 2},
	}

	agg := Aggregate(reports)[2]
	require.NotNil(t, agg.AverageRating)
	assert.InDelta(t, 4.5, *agg.AverageRating, 1e-9)
}

func TestAggregateAmenityAndPaymentUnion(t *testing.T) {
	reports := []models.Report{
		{StationID: 3, AmenitiesAdded: []string{"Car Wash", "ATM"}},
		{StationID: 3, AmenitiesAdded: []string{"ATM"}, PaymentMethodsAdded: []string{"POS"}},
		{StationID: 3, PaymentMethodsAdded: []string{"Transfer", "POS"}},
	}

	agg := Aggregate(reports)[3]
	assert.Equal(t, []string{"ATM", "Car Wash", "POS", "Transfer"}, agg.Amenities)
}

func TestAggregateProductUnion(t *testing.T) {
	reports := []models.Report{
		{
			StationID: 4,
			FuelType:  strPtr("PMS"),
			FuelPrice: floatPtr(617),
			OtherFuelPrices: map[string]float64{
				"Diesel": 1050,
				"gas":    1300, // recorded as given, not normalized
			},
		},
		// Diesel primary tag does not register a product on its own
		{StationID: 4, FuelType: strPtr("AGO"), FuelPrice: floatPtr(1100)},
		// Petrol tag with no price does not register either
		{StationID: 4, FuelType: strPtr("PMS")},
	}

	agg := Aggregate(reports)[4]
	assert.Equal(t, []string{"Diesel", models.FuelPetrol, "gas"}, agg.Products)
}

func TestAggregateEmptyLog(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}
