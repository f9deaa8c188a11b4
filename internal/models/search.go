package models

// Sort modes for search results.
const (
	SortByDistance   = "distance"
	SortByLastUpdate = "last_update"
)

// PriceRange carries the raw text the user typed into the min/max price
// boxes. Bounds that do not parse as numbers are treated as unbounded,
// never as errors.
type PriceRange struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

type FilterCriteria struct {
	PriceRange PriceRange `json:"price_range"`
	FuelType   string     `json:"fuel_type,omitempty"` // empty = no fuel filter
	MinRating  int        `json:"min_rating"`          // 0 = no filter
	Amenities  []string   `json:"amenities,omitempty"` // station must contain all
	SortBy     string     `json:"sort_by"`
}

// DefaultCriteria is the state restored by a filter reset.
func DefaultCriteria() FilterCriteria {
	return FilterCriteria{
		PriceRange: PriceRange{},
		FuelType:   "",
		MinRating:  0,
		Amenities:  nil,
		SortBy:     SortByDistance,
	}
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Aggregate is the reduction of all reports for one station within the
// current search. Recomputed from scratch on every search.
type Aggregate struct {
	AverageRating *float64 `json:"average_rating,omitempty"`
	Amenities     []string `json:"amenities"` // amenity + payment-method union
	Products      []string `json:"products"`
}

// EnrichedStation is a candidate station joined with its aggregate; the
// unit the filter engine and sectioner operate on.
type EnrichedStation struct {
	Station
	AverageRating *float64 `json:"average_rating,omitempty"`
	Amenities     []string `json:"amenities"`
	Products      []string `json:"products"`
	Brand         *Brand   `json:"brand,omitempty"`
}

// Section is one fixed-width distance band of search results.
type Section struct {
	Title    string            `json:"title"`
	BandKm   int               `json:"band_km"`
	Stations []EnrichedStation `json:"stations"`
}

type SearchStatistics struct {
	CheapestStations  map[string][]int64        `json:"cheapest_stations"`
	LowestPrice       map[string]float64        `json:"lowest_price"`
	AveragePrice      map[string]float64        `json:"average_price"`
	HighestPrice      map[string]float64        `json:"highest_price"`
	PriceDistribution map[string]map[string]int `json:"price_distribution"`
	StandardDeviation map[string]float64        `json:"standard_deviation"`
	BrandDistribution map[string]int            `json:"brand_distribution"`
}

type SearchResponse struct {
	Sections    []Section         `json:"sections"`
	Favourites  []EnrichedStation `json:"favourites,omitempty"`
	Total       int               `json:"total"`
	Statistics  *SearchStatistics `json:"statistics,omitempty"`
	Attribution []string          `json:"attribution"`
}
