package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nyumba-app/nyumba/internal/config"
	"github.com/nyumba-app/nyumba/internal/db"
	"github.com/nyumba-app/nyumba/internal/logging"
	"github.com/nyumba-app/nyumba/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Start the HTTP server for the web UI and REST API.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default: NYUMBA_PORT or 8080)")

	return cmd
}

func runServe(port int) error {
	cfg := config.Load()
	if port != 0 {
		cfg.Port = strconv.Itoa(port)
	}
	logging.Setup(cfg.DevMode)

	// --db wins over NYUMBA_DB, which wins over the default path.
	path := flagDB
	if path == "" {
		path = cfg.DBPath
	}
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	srv, err := web.NewServer(database, cfg)
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	fmt.Printf("Starting nyumba on http://localhost:%s\n", cfg.Port)
	return srv.ListenAndServe()
}
