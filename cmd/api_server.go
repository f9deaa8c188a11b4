package cmd

import (
	"fmt"
	"log"
	"net/http"

	"github.com/Depado/ginprom"
	"github.com/aurowora/compress"
	"github.com/cockroachdb/errors"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"

	"github.com/fuelscout/fuelscout-api/internal"
	"github.com/fuelscout/fuelscout-api/internal/brands"
	"github.com/fuelscout/fuelscout-api/internal/filters"
	"github.com/fuelscout/fuelscout-api/internal/routes"
	healthcheck "github.com/tavsec/gin-healthcheck"
	"github.com/tavsec/gin-healthcheck/checks"
	hc_config "github.com/tavsec/gin-healthcheck/config"
)

func ApiServer(dbPath string, port int, debug bool) error {

	client, repo, err := bootstrap(dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close repository: %v", err)
		}
	}()

	if _, err := internal.StartCron(client, repo); err != nil {
		return errors.Wrap(err, "failed to start CRON jobs")
	}

	brandMap, err := brands.GetBrandsMap()
	if err != nil {
		return errors.Wrap(err, "failed to load brand directory")
	}

	sessions := filters.NewManager()

	r := gin.New()

	prometheus := ginprom.New(
		ginprom.Engine(r),
		ginprom.Path("/metrics"),
		ginprom.Ignore("/healthz"),
	)

	r.Use(
		gin.Recovery(),
		gin.LoggerWithWriter(gin.DefaultWriter, "/healthz", "/metrics"),
		prometheus.Instrument(),
		compress.Compress(),
		cors.Default(),
	)

	if debug {
		log.Println("WARNING: pprof endpoints are enabled and exposed. Do not run with this flag in production.")
		pprof.Register(r)
	}

	err = healthcheck.New(r, hc_config.DefaultConfig(), []checks.Check{
		repo.Check(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize healthcheck")
	}

	v1 := r.Group("/v1/fuel-finder")
	v1.GET("/search", routes.Search(repo, brandMap, sessions))
	v1.GET("/search/export", routes.Export(repo, brandMap, sessions))

	v1.GET("/sessions/:id/filters", routes.GetFilters(sessions))
	v1.PATCH("/sessions/:id/filters", routes.PatchFilters(sessions))
	v1.DELETE("/sessions/:id/filters", routes.DeleteFilters(sessions))
	v1.PUT("/sessions/:id/location", routes.PutLocation(sessions))
	v1.PUT("/sessions/:id/favourites", routes.PutFavourites(sessions))
	v1.GET("/sessions/:id/results", routes.GetResults(sessions))

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Starting HTTP API Server on port %d...", port)
	if err := r.Run(addr); err != nil && err != http.ErrServerClosed {
		return errors.Wrapf(err, "HTTP API Server failed to start on port %d", port)
	}

	return nil
}
