package models

import (
	"log"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Canonical fuel product names. Crowd-sourced reports use free-form tags
// ("PMS", "ago", ...) which are normalized to one of these on ingest.
const (
	FuelPetrol   = "Petrol"
	FuelDiesel   = "Diesel"
	FuelGas      = "Gas"
	FuelKerosine = "Kerosine"
)

type Station struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Distance in meters from the search origin. Populated by the
	// candidate search and never mutated afterwards.
	DistanceM float64 `json:"distance_m"`

	// Snapshot "latest price" per fuel product, maintained from the
	// report log as reports are inserted.
	PetrolPrice   *float64   `json:"petrol_price,omitempty"`
	DieselPrice   *float64   `json:"diesel_price,omitempty"`
	GasPrice      *float64   `json:"gas_price,omitempty"`
	KerosinePrice *float64   `json:"kerosine_price,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
}

// PriceFor maps a canonical fuel product to its snapshot price field.
// Returns nil for unknown products or when no price has been reported.
func (s *Station) PriceFor(fuelType string) *float64 {
	switch fuelType {
	case FuelPetrol:
		return s.PetrolPrice
	case FuelDiesel:
		return s.DieselPrice
	case FuelGas:
		return s.GasPrice
	case FuelKerosine:
		return s.KerosinePrice
	default:
		return nil
	}
}

// Report is one append-only crowd-sourced observation about a station.
// Every field other than the station reference is optional.
type Report struct {
	ID        int64    `json:"id"`
	StationID int64    `json:"station_id"`
	Rating    *int     `json:"rating,omitempty"` // 1..5
	FuelType  *string  `json:"fuel_type,omitempty"`
	FuelPrice *float64 `json:"fuel_price,omitempty"`

	// Prices observed for fuels other than the primary tag, keyed by
	// product name as supplied by the reporter.
	OtherFuelPrices map[string]float64 `json:"other_fuel_prices,omitempty"`

	AmenitiesAdded      []string  `json:"amenities_added,omitempty"`
	PaymentMethodsAdded []string  `json:"payment_methods_added,omitempty"`
	ReportedAt          time.Time `json:"reported_at"`
}

func (s *Station) ToTuple() []any {
	return []any{
		s.ID,
		s.Name,
		s.Address,
		s.Latitude,
		s.Longitude,
		s.PetrolPrice,
		s.DieselPrice,
		s.GasPrice,
		s.KerosinePrice,
		s.LastUpdated,
	}
}

func (r *Report) ToTuple() []any {
	return []any{
		r.StationID,
		r.Rating,
		r.FuelType,
		r.FuelPrice,
		toJSON(r.OtherFuelPrices),
		toJSON(r.AmenitiesAdded),
		toJSON(r.PaymentMethodsAdded),
		r.ReportedAt,
	}
}

func toJSON(v any) string {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		log.Fatalf("Error marshaling to JSON: %v", err)
	}
	return string(jsonBytes)
}
