package internal

// ATTRIBUTION is included with every search response.
var ATTRIBUTION = []string{
	"Prices and amenities are crowd-sourced from FuelScout community reports",
}
