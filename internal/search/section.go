package search

import (
	"fmt"
	"math"
	"sort"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

// BandWidthKm is the fixed width of each distance band.
const BandWidthKm = 4

// Sectionize groups stations into fixed-width distance bands for
// sectioned display. The input is always re-sorted ascending by distance
// first, regardless of any prior ordering; this is what delivers
// nearest-first semantics. Bands are emitted in the order first
// encountered while scanning the sorted list.
func Sectionize(stations []models.EnrichedStation) []models.Section {
	ordered := make([]models.EnrichedStation, len(stations))
	copy(ordered, stations)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DistanceM < ordered[j].DistanceM
	})

	var sections []models.Section
	bandIndex := make(map[int]int)

	for _, station := range ordered {
		key := bandKey(station.DistanceM)
		idx, ok := bandIndex[key]
		if !ok {
			idx = len(sections)
			bandIndex[key] = idx
			sections = append(sections, models.Section{
				Title:  fmt.Sprintf("Within %dkm", key),
				BandKm: key,
			})
		}
		sections[idx].Stations = append(sections[idx].Stations, station)
	}

	return sections
}

// bandKey computes the band for a distance: ceiling(km / width) * width,
// with a zero key promoted to the first band so the nearest section is
// always "Within 4km".
func bandKey(distanceM float64) int {
	km := distanceM / 1000.0
	key := int(math.Ceil(km/BandWidthKm)) * BandWidthKm
	if key == 0 {
		key = BandWidthKm
	}
	return key
}
