// Package brands holds the retail brand directory used to badge search
// results. The directory ships as an embedded CSV; favicons can be
// refreshed from each brand's homepage.
package brands

import (
	_ "embed"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fuelscout/fuelscout-api/internal"
	"github.com/fuelscout/fuelscout-api/internal/models"
)

//go:embed brands.csv
var brandsCSV string

func GetBrandsList() ([]*models.Brand, error) {
	arr := make([]*models.Brand, 0, 20)
	reader := strings.NewReader(brandsCSV)

	for record := range internal.ParseCSV(reader, false, models.FromCSV) {
		if record.Error != nil {
			return nil, errors.Wrap(record.Error, "failed to load brand directory")
		}
		arr = append(arr, record.Value)
	}

	return arr, nil
}

func GetBrandsMap() (Brands, error) {
	brands, err := GetBrandsList()
	if err != nil {
		return nil, err
	}

	m := make(map[string]*models.Brand, len(brands))
	for _, record := range brands {
		if _, ok := m[record.Name]; ok {
			return nil, errors.Newf("duplicate key detected: %s", record.Name)
		}
		m[record.Name] = record
	}

	return m, nil
}

type Brands map[string]*models.Brand

// Match resolves a station name to its brand by case-insensitive prefix,
// preferring the longest matching brand name. Returns nil for unbranded
// or unrecognized stations.
func (b Brands) Match(stationName string) *models.Brand {
	lower := strings.ToLower(stationName)

	var best *models.Brand
	for name, brand := range b {
		if strings.HasPrefix(lower, strings.ToLower(name)) {
			if best == nil || len(name) > len(best.Name) {
				best = brand
			}
		}
	}
	return best
}
