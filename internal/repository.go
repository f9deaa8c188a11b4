package internal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/tavsec/gin-healthcheck/checks"

	"github.com/fuelscout/fuelscout-api/internal/models"
	"github.com/fuelscout/fuelscout-api/internal/search"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed sql/insert_station.sql
var insertStationSQL string

//go:embed sql/insert_report.sql
var insertReportSQL string

//go:embed sql/search_stations.sql
var searchStationsSQL string

//go:embed sql/reports_for_stations.sql
var reportsForStationsSQL string

//go:embed sql/update_snapshot_price.sql
var updateSnapshotPriceSQL string

// DefaultRadiusM is the search radius applied when the caller does not
// supply one.
const DefaultRadiusM = 50_000

// metersPerDegree approximates one degree of latitude.
const metersPerDegree = 111_132.0

var priceColumns = map[string]string{
	models.FuelPetrol:   "petrol_price",
	models.FuelDiesel:   "diesel_price",
	models.FuelGas:      "gas_price",
	models.FuelKerosine: "kerosine_price",
}

type StationsRepository interface {
	InsertStations(batch []models.Station) (int, error)
	InsertReports(batch []models.Report) (int, error)

	// SearchCandidates returns stations within radiusM meters of the
	// origin whose name or address matches the term (empty term matches
	// all), each annotated with its distance from the origin, nearest
	// first.
	SearchCandidates(term string, origin models.Location, radiusM float64) ([]models.Station, error)

	// ReportsForStations fetches the full report log for the given
	// stations in one call. An empty id set yields no rows.
	ReportsForStations(ids []int64) ([]models.Report, error)

	StationsByID(ids []int64) ([]models.Station, error)
	Check() checks.Check
	Close() error
}

type sqliteRepository struct {
	db *sql.DB
}

func NewStationsRepository(db *sql.DB) StationsRepository {
	return &sqliteRepository{
		db: db,
	}
}

func (repo *sqliteRepository) InsertStations(batch []models.Station) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := repo.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("error rolling back transaction: %v", rbErr)
			}
		}
	}()

	stmt, err := tx.Prepare(insertStationSQL)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare statement")
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Printf("failed to close statement: %v", err)
		}
	}()

	for _, station := range batch {
		_, err = stmt.Exec(station.ToTuple()...)
		if err != nil {
			return 0, errors.Wrap(err, "failed to execute individual insert")
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	return len(batch), nil
}

func (repo *sqliteRepository) InsertReports(batch []models.Report) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	tx, err := repo.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("error rolling back transaction: %v", rbErr)
			}
		}
	}()

	stmt, err := tx.Prepare(insertReportSQL)
	if err != nil {
		return 0, errors.Wrap(err, "failed to prepare statement")
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Printf("failed to close statement: %v", err)
		}
	}()

	for _, report := range batch {
		_, err = stmt.Exec(report.ToTuple()...)
		if err != nil {
			return 0, errors.Wrap(err, "failed to execute individual insert")
		}
		if err = updateSnapshots(tx, &report); err != nil {
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	return len(batch), nil
}

// updateSnapshots folds a report's observed prices into the owning
// station's snapshot columns. Older reports never clobber a newer
// snapshot.
func updateSnapshots(tx *sql.Tx, report *models.Report) error {
	apply := func(fuelType string, price float64) error {
		column, ok := priceColumns[search.NormalizeFuelTag(fuelType)]
		if !ok {
			return nil
		}
		query := fmt.Sprintf(updateSnapshotPriceSQL, column)
		_, err := tx.Exec(query, price, report.ReportedAt, report.StationID, report.ReportedAt)
		return errors.Wrapf(err, "failed to update %s snapshot", column)
	}

	if report.FuelType != nil && report.FuelPrice != nil {
		if err := apply(*report.FuelType, *report.FuelPrice); err != nil {
			return err
		}
	}
	for fuelType, price := range report.OtherFuelPrices {
		if err := apply(fuelType, price); err != nil {
			return err
		}
	}
	return nil
}

func (repo *sqliteRepository) SearchCandidates(term string, origin models.Location, radiusM float64) ([]models.Station, error) {
	if radiusM <= 0 {
		radiusM = DefaultRadiusM
	}

	latDelta := radiusM / metersPerDegree
	lngDelta := radiusM / (metersPerDegree * math.Cos(origin.Latitude*math.Pi/180.0))

	pattern := "%" + term + "%"
	rows, err := repo.db.Query(searchStationsSQL,
		origin.Latitude-latDelta, origin.Latitude+latDelta,
		origin.Longitude-math.Abs(lngDelta), origin.Longitude+math.Abs(lngDelta),
		term, pattern, pattern,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute search query")
	}
	defer closeRows(rows)

	var results []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}

		// Bounding box is only a prefilter; the haversine distance is
		// authoritative.
		station.DistanceM = haversineM(origin.Latitude, origin.Longitude, station.Latitude, station.Longitude)
		if station.DistanceM > radiusM {
			continue
		}
		results = append(results, station)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating over rows")
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].DistanceM < results[j].DistanceM
	})
	return results, nil
}

func (repo *sqliteRepository) StationsByID(ids []int64) ([]models.Station, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		"SELECT id, name, address, latitude, longitude, petrol_price, diesel_price, gas_price, kerosine_price, last_updated FROM stations WHERE id IN (%s)",
		placeholders(len(ids)),
	)
	rows, err := repo.db.Query(query, asAnySlice(ids)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch stations by id")
	}
	defer closeRows(rows)

	var results []models.Station
	for rows.Next() {
		station, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, station)
	}
	return results, errors.Wrap(rows.Err(), "error iterating over rows")
}

func (repo *sqliteRepository) ReportsForStations(ids []int64) ([]models.Report, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(reportsForStationsSQL, placeholders(len(ids)))
	rows, err := repo.db.Query(query, asAnySlice(ids)...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute report fetch")
	}
	defer closeRows(rows)

	var results []models.Report
	for rows.Next() {
		var report models.Report
		var rating sql.NullInt64
		var fuelType sql.NullString
		var fuelPrice sql.NullFloat64
		var otherFuelPricesJSON, amenitiesJSON, paymentMethodsJSON string

		if err := rows.Scan(
			&report.ID, &report.StationID, &rating, &fuelType, &fuelPrice,
			&otherFuelPricesJSON, &amenitiesJSON, &paymentMethodsJSON, &report.ReportedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}

		if rating.Valid {
			value := int(rating.Int64)
			report.Rating = &value
		}
		if fuelType.Valid {
			report.FuelType = &fuelType.String
		}
		if fuelPrice.Valid {
			report.FuelPrice = &fuelPrice.Float64
		}
		if err := json.Unmarshal([]byte(otherFuelPricesJSON), &report.OtherFuelPrices); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal other fuel prices")
		}
		if err := json.Unmarshal([]byte(amenitiesJSON), &report.AmenitiesAdded); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal amenities")
		}
		if err := json.Unmarshal([]byte(paymentMethodsJSON), &report.PaymentMethodsAdded); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal payment methods")
		}
		results = append(results, report)
	}

	return results, errors.Wrap(rows.Err(), "error iterating over rows")
}

func (repo *sqliteRepository) Check() checks.Check {
	return checks.SqlCheck{Sql: repo.db}
}

func (repo *sqliteRepository) Close() error {
	return repo.db.Close()
}

func scanStation(rows *sql.Rows) (models.Station, error) {
	var station models.Station
	var petrol, diesel, gas, kerosine sql.NullFloat64
	var lastUpdated sql.NullTime

	if err := rows.Scan(
		&station.ID, &station.Name, &station.Address, &station.Latitude, &station.Longitude,
		&petrol, &diesel, &gas, &kerosine, &lastUpdated,
	); err != nil {
		return station, errors.Wrap(err, "failed to scan row")
	}

	if petrol.Valid {
		station.PetrolPrice = &petrol.Float64
	}
	if diesel.Valid {
		station.DieselPrice = &diesel.Float64
	}
	if gas.Valid {
		station.GasPrice = &gas.Float64
	}
	if kerosine.Valid {
		station.KerosinePrice = &kerosine.Float64
	}
	if lastUpdated.Valid {
		station.LastUpdated = &lastUpdated.Time
	}
	return station, nil
}

// haversineM computes the great-circle distance in meters.
func haversineM(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusM = 6_371_000.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180.0 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func asAnySlice(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}
