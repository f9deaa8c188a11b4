package cmd

import (
	"log"

	"github.com/cockroachdb/errors"
)

func Import(dbPath string) error {

	client, repo, err := bootstrap(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	numStations, err := client.GetStations(repo.InsertStations)
	if err != nil {
		return errors.Wrap(err, "failed to fetch stations")
	}
	log.Printf("imported %d stations", numStations)

	numReports, err := client.GetReports(repo.InsertReports)
	if err != nil {
		return errors.Wrap(err, "failed to fetch reports")
	}
	log.Printf("imported %d reports", numReports)

	return nil
}
