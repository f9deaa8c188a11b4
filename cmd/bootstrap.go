package cmd

import (
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/rm-hull/godx"

	"github.com/fuelscout/fuelscout-api/internal"
	"github.com/fuelscout/fuelscout-api/internal/feed"
)

// bootstrap initialises shared resources used by both the API server and
// import commands. It returns the authenticated feed client, a
// repository, and an error if something failed during startup.
func bootstrap(dbPath string) (feed.Client, internal.StationsRepository, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	godx.GitVersion()
	godx.EnvironmentVars()
	godx.UserInfo()

	clientId := os.Getenv("FEED_CLIENT_ID")
	clientSecret := os.Getenv("FEED_CLIENT_SECRET")
	baseUrl := os.Getenv("FEED_BASE_URL")

	client, err := feed.NewClient(baseUrl, clientId, clientSecret)
	if err != nil {
		return nil, nil, errors.Wrap(err, "feed authentication failed")
	}

	db, err := internal.Connect(dbPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize database")
	}

	if err := internal.Migrate("migrations", dbPath); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "failed to migrate SQL")
	}

	repo := internal.NewStationsRepository(db)

	return client, repo, nil
}
