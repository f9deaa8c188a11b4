package cmd

import (
	"encoding/csv"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fuelscout/fuelscout-api/internal/brands"
)

// Favicons scrapes each brand's homepage for its favicon and writes the
// refreshed directory as CSV to stdout, ready to replace the embedded
// brands.csv.
func Favicons() error {
	brandsList, err := brands.GetBrandsList()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	writer := csv.NewWriter(os.Stdout)

	for _, brand := range brandsList {
		favicon, err := brands.FetchFavicon(client, brand)
		if err != nil {
			log.Printf("skipping %s: %v", brand.Name, err)
		} else {
			brand.Favicon = &favicon
		}

		if err := writer.Write(brand.ToCSV()); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
