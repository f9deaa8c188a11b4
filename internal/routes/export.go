package routes

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/fuelscout/fuelscout-api/internal"
	"github.com/fuelscout/fuelscout-api/internal/brands"
	"github.com/fuelscout/fuelscout-api/internal/filters"
	"github.com/fuelscout/fuelscout-api/internal/models"
	"github.com/fuelscout/fuelscout-api/internal/search"
)

const exportSheet = "Stations"

// Export runs the same pipeline as Search and writes the filtered,
// distance-ordered list as an xlsx workbook.
func Export(repo internal.StationsRepository, brandMap brands.Brands, sessions *filters.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		params, err := parseSearchParams(c, sessions)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		candidates, err := repo.SearchCandidates(params.term, params.origin, params.radiusM)
		if err != nil {
			log.Printf("error while fetching candidate stations: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		reports, err := repo.ReportsForStations(unionIDs(candidates, nil))
		if err != nil {
			log.Printf("error while fetching reports: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		enriched := search.Enrich(candidates, search.Aggregate(reports), brandMap.Match)
		filtered := search.Apply(enriched, params.criteria)

		workbook, err := buildWorkbook(filtered)
		if err != nil {
			log.Printf("error while building workbook: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "An internal server error occurred"})
			return
		}

		filename := fmt.Sprintf("stations-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

		if err := workbook.Write(c.Writer); err != nil {
			log.Printf("error while writing workbook: %v", err)
		}
	}
}

func buildWorkbook(stations []models.EnrichedStation) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []any{
		"ID", "Name", "Address", "Distance (m)", "Petrol", "Diesel", "Gas", "Kerosine",
		"Rating", "Amenities", "Brand", "Last Updated",
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		return nil, err
	}

	// Sectioner ordering: always nearest first in the export.
	ordered := flattenSections(search.Sectionize(stations))

	for i, station := range ordered {
		row := []any{
			station.ID,
			station.Name,
			station.Address,
			station.DistanceM,
			cellValue(station.PetrolPrice),
			cellValue(station.DieselPrice),
			cellValue(station.GasPrice),
			cellValue(station.KerosinePrice),
			cellValue(station.AverageRating),
			joinOrEmpty(station.Amenities),
			brandName(station.Brand),
			lastUpdatedCell(station.LastUpdated),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func flattenSections(sections []models.Section) []models.EnrichedStation {
	var out []models.EnrichedStation
	for _, section := range sections {
		out = append(out, section.Stations...)
	}
	return out
}

func cellValue(value *float64) any {
	if value == nil {
		return ""
	}
	return *value
}

func joinOrEmpty(values []string) string {
	return strings.Join(values, ", ")
}

func brandName(brand *models.Brand) string {
	if brand == nil {
		return ""
	}
	return brand.Name
}

func lastUpdatedCell(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}
