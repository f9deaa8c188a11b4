package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/fuelscout/fuelscout-api/cmd"
)

func main() {
	var dbPath string
	var port int
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "fuelscout-api",
		Short: "Fuel station search API with crowd-sourced prices and amenities",
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/fuelscout.db", "path to the sqlite database")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ApiServer(dbPath, port, debug)
		},
	}
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	serveCmd.Flags().BoolVar(&debug, "debug", false, "expose pprof endpoints")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "One-shot import of stations and reports from the feed",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Import(dbPath)
		},
	}

	faviconsCmd := &cobra.Command{
		Use:   "favicons",
		Short: "Refresh brand favicons and emit the updated directory CSV",
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.Favicons()
		},
	}

	rootCmd.AddCommand(serveCmd, importCmd, faviconsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
