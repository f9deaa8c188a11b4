package internal

import (
	"log"

	"github.com/robfig/cron/v3"

	"github.com/fuelscout/fuelscout-api/internal/feed"
)

const CRON_SCHEDULE_STATIONS = "0 */6 * * *" // Every 6 hours
const CRON_SCHEDULE_REPORTS = "10 */1 * * *" // Every hour

func StartCron(client feed.Client, repo StationsRepository) (*cron.Cron, error) {

	c := cron.New()

	log.Print("Starting CRON jobs to sync stations and crowd-sourced reports")

	if _, err := c.AddFunc(CRON_SCHEDULE_STATIONS, func() {
		numStations, err := client.GetStations(repo.InsertStations)
		if err != nil {
			log.Printf("Error fetching stations: %v\n", err)
			return
		}
		log.Printf("Inserted %d stations", numStations)
	}); err != nil {
		return nil, err
	}

	if _, err := c.AddFunc(CRON_SCHEDULE_REPORTS, func() {
		numReports, err := client.GetReports(repo.InsertReports)
		if err != nil {
			log.Printf("Error fetching reports: %v\n", err)
			return
		}
		log.Printf("Inserted %d reports", numReports)
	}); err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
