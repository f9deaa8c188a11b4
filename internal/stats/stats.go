package stats

import (
	"fmt"
	"math"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

// Derive computes per-fuel price statistics across an enriched result
// set, using each station's snapshot price. bucketSize is the width (in
// price units) of the distribution histogram buckets.
func Derive(results []models.EnrichedStation, bucketSize int) *models.SearchStatistics {
	if bucketSize <= 0 {
		bucketSize = 25
	}
	stats := &models.SearchStatistics{
		CheapestStations:  make(map[string][]int64),
		LowestPrice:       make(map[string]float64),
		AveragePrice:      make(map[string]float64),
		HighestPrice:      make(map[string]float64),
		PriceDistribution: make(map[string]map[string]int),
		StandardDeviation: make(map[string]float64),
		BrandDistribution: make(map[string]int),
	}

	fuelTypes := []string{models.FuelPetrol, models.FuelDiesel, models.FuelGas, models.FuelKerosine}

	// Group snapshot prices by fuel type
	fuelTypePrices := make(map[string][]float64)
	fuelTypeStations := make(map[string]map[float64][]int64) // price -> station ids

	for _, result := range results {
		for _, fuelType := range fuelTypes {
			priceField := result.PriceFor(fuelType)
			if priceField == nil {
				continue
			}

			price := *priceField
			fuelTypePrices[fuelType] = append(fuelTypePrices[fuelType], price)

			if fuelTypeStations[fuelType] == nil {
				fuelTypeStations[fuelType] = make(map[float64][]int64)
			}
			fuelTypeStations[fuelType][price] = append(fuelTypeStations[fuelType][price], result.ID)
		}
	}

	for fuelType, prices := range fuelTypePrices {
		if len(prices) == 0 {
			continue
		}

		// Lowest/avg/highest price and cheapest stations
		lowestPrice := prices[0]
		highestPrice := prices[0]
		sum := 0.0

		for _, p := range prices {
			if p < lowestPrice {
				lowestPrice = p
			}
			if p > highestPrice {
				highestPrice = p
			}
			sum += p
		}
		stats.LowestPrice[fuelType] = lowestPrice
		stats.HighestPrice[fuelType] = highestPrice
		stats.CheapestStations[fuelType] = fuelTypeStations[fuelType][lowestPrice]

		avgPrice := sum / float64(len(prices))
		stats.AveragePrice[fuelType] = math.Round(avgPrice*10) / 10

		// Standard deviation
		if len(prices) > 1 {
			variance := 0.0
			for _, p := range prices {
				variance += math.Pow(p-avgPrice, 2)
			}
			variance /= float64(len(prices))
			stats.StandardDeviation[fuelType] = math.Sqrt(variance)
		}

		stats.PriceDistribution[fuelType] = make(map[string]int)
		for _, p := range prices {
			price := int(p)
			bucketStart := (price / bucketSize) * bucketSize
			bucketEnd := bucketStart + bucketSize - 1
			bucketKey := fmt.Sprintf("%d-%d", bucketStart, bucketEnd)
			stats.PriceDistribution[fuelType][bucketKey]++
		}
	}

	// Brand distribution - count results by resolved brand
	for _, result := range results {
		if result.Brand != nil {
			stats.BrandDistribution[result.Brand.Name]++
		}
	}

	return stats
}
