package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/galaxykit/holocron/internal/api"
	"github.com/galaxykit/holocron/internal/catalog"
	"github.com/galaxykit/holocron/internal/schema"
	"github.com/galaxykit/holocron/internal/source"
	"github.com/galaxykit/holocron/internal/syncer"
	"github.com/spf13/cobra"
)

var syncURL string

var syncCmd = &cobra.Command{
	Use:   "sync <entity>",
	Short: "Run a one-shot sync of a single entity from upstream",
	Long: `Drain the upstream feed for one entity and reconcile it into the local
store. Entity is a route name: films, people, planets, species, starships,
or vehicles.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := api.LoadConfig()
		setupLogger(cfg)

		sc, ok := schema.Lookup(args[0])
		if !ok {
			routes := make([]string, 0, 6)
			for _, s := range schema.All() {
				routes = append(routes, s.Route)
			}
			return fmt.Errorf("unknown entity %q (want one of: %s)", args[0], strings.Join(routes, ", "))
		}

		store, err := catalog.Open(cfg.DBPath, schema.All())
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		startURL := syncURL
		if startURL == "" {
			startURL = cfg.UpstreamBaseURL + sc.UpstreamPath
		}

		engine := syncer.New(store, source.New(cfg.PageTimeout))
		result, err := engine.Run(cmd.Context(), sc, startURL)
		if err != nil {
			slog.Error("sync failed", "entity", sc.Route, "err", err)
			return fmt.Errorf("sync %s: %w", sc.Route, err)
		}

		fmt.Printf("%s: %d records ingested", sc.Route, result.Ingested)
		if result.Skipped > 0 {
			fmt.Printf(", %d skipped (missing %s)", result.Skipped, sc.NaturalKey)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncURL, "url", "", "override the upstream collection URL")
	rootCmd.AddCommand(syncCmd)
}
