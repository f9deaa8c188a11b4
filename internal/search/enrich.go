package search

import (
	"github.com/fuelscout/fuelscout-api/internal/models"
)

// BrandResolver maps a station name to its retail brand, or nil when the
// station is unbranded or unrecognized.
type BrandResolver func(stationName string) *models.Brand

// Enrich joins candidate stations with their aggregates. Stations with no
// reports keep nil/empty aggregate fields; no station is dropped here.
func Enrich(candidates []models.Station, aggregates map[int64]models.Aggregate, resolveBrand BrandResolver) []models.EnrichedStation {
	enriched := make([]models.EnrichedStation, 0, len(candidates))

	for _, station := range candidates {
		es := models.EnrichedStation{
			Station:   station,
			Amenities: []string{},
			Products:  []string{},
		}
		if agg, ok := aggregates[station.ID]; ok {
			es.AverageRating = agg.AverageRating
			if agg.Amenities != nil {
				es.Amenities = agg.Amenities
			}
			if agg.Products != nil {
				es.Products = agg.Products
			}
		}
		if resolveBrand != nil {
			es.Brand = resolveBrand(station.Name)
		}
		enriched = append(enriched, es)
	}

	return enriched
}
