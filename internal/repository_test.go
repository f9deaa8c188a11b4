package internal

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelscout/fuelscout-api/internal/models"
)

func setupTestDB(t *testing.T) StationsRepository {
	tmpFile, err := os.CreateTemp("", "fuelscout_test-*.db")
	require.NoError(t, err)
	dbPath := tmpFile.Name()
	_ = tmpFile.Close()

	t.Cleanup(func() {
		_ = os.Remove(dbPath)
	})

	db, err := Connect(dbPath)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	err = Migrate("../migrations", dbPath)
	require.NoError(t, err)
	return NewStationsRepository(db)
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestStationSearchIntegration(t *testing.T) {
	repo := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)

	stations := []models.Station{
		{ID: 1, Name: "NNPC Marina", Address: "12 Marina Road, Lagos", Latitude: 6.4500, Longitude: 3.3900},
		{ID: 2, Name: "Oando Yaba", Address: "3 Herbert Macaulay Way, Lagos", Latitude: 6.4950, Longitude: 3.3900},
		{ID: 3, Name: "TotalEnergies Wuse", Address: "Plot 14 Aminu Kano Crescent, Abuja", Latitude: 9.0500, Longitude: 7.4900},
	}

	count, err := repo.InsertStations(stations)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	origin := models.Location{Latitude: 6.4500, Longitude: 3.3900}

	t.Run("Radius filtering and distance ordering", func(t *testing.T) {
		results, err := repo.SearchCandidates("", origin, 10_000)
		require.NoError(t, err)
		require.Len(t, results, 2)

		// Nearest first, with server-computed distances.
		assert.Equal(t, int64(1), results[0].ID)
		assert.InDelta(t, 0, results[0].DistanceM, 1.0)
		assert.Equal(t, int64(2), results[1].ID)
		assert.InDelta(t, 5000, results[1].DistanceM, 100.0)

		// Tight radius excludes Yaba.
		results, err = repo.SearchCandidates("", origin, 1_000)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(1), results[0].ID)
	})

	t.Run("Term matches name or address", func(t *testing.T) {
		results, err := repo.SearchCandidates("marina", origin, 10_000)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(1), results[0].ID)

		results, err = repo.SearchCandidates("Macaulay", origin, 10_000)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, int64(2), results[0].ID)

		results, err = repo.SearchCandidates("no such station", origin, 10_000)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Snapshot prices maintained from reports", func(t *testing.T) {
		reports := []models.Report{
			{
				StationID:  1,
				FuelType:   strPtr("PMS"),
				FuelPrice:  floatPtr(600),
				ReportedAt: now.Add(-1 * time.Hour),
			},
			{
				// Older report arriving late must not clobber the snapshot.
				StationID:  1,
				FuelType:   strPtr("PMS"),
				FuelPrice:  floatPtr(620),
				ReportedAt: now.Add(-2 * time.Hour),
			},
			{
				StationID:       1,
				OtherFuelPrices: map[string]float64{"AGO": 1050},
				ReportedAt:      now.Add(-3 * time.Hour),
			},
		}

		count, err := repo.InsertReports(reports)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		results, err := repo.SearchCandidates("", origin, 1_000)
		require.NoError(t, err)
		require.Len(t, results, 1)

		station := results[0]
		require.NotNil(t, station.PetrolPrice)
		assert.Equal(t, 600.0, *station.PetrolPrice)
		require.NotNil(t, station.DieselPrice)
		assert.Equal(t, 1050.0, *station.DieselPrice)
		require.NotNil(t, station.LastUpdated)
		assert.True(t, station.LastUpdated.Equal(now.Add(-1*time.Hour)))
	})

	t.Run("Bulk report fetch", func(t *testing.T) {
		_, err := repo.InsertReports([]models.Report{
			{
				StationID:           2,
				Rating:              intPtr(4),
				AmenitiesAdded:      []string{"ATM"},
				PaymentMethodsAdded: []string{"POS"},
				ReportedAt:          now,
			},
		})
		require.NoError(t, err)

		reports, err := repo.ReportsForStations([]int64{1, 2})
		require.NoError(t, err)
		require.Len(t, reports, 4)

		byStation := make(map[int64]int)
		for _, report := range reports {
			byStation[report.StationID]++
		}
		assert.Equal(t, map[int64]int{1: 3, 2: 1}, byStation)

		last := reports[len(reports)-1]
		assert.Equal(t, int64(2), last.StationID)
		require.NotNil(t, last.Rating)
		assert.Equal(t, 4, *last.Rating)
		assert.Equal(t, []string{"ATM"}, last.AmenitiesAdded)
		assert.Equal(t, []string{"POS"}, last.PaymentMethodsAdded)

		// Empty id set skips the query entirely.
		reports, err = repo.ReportsForStations(nil)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("Stations by id", func(t *testing.T) {
		results, err := repo.StationsByID([]int64{2, 3})
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = repo.StationsByID(nil)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}
