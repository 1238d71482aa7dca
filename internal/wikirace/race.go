package wikirace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wikirace/wikirace/internal/config"
	"github.com/wikirace/wikirace/internal/db"
	"github.com/wikirace/wikirace/internal/logging"
	"github.com/wikirace/wikirace/internal/racer"
	"github.com/wikirace/wikirace/internal/store"
	"github.com/wikirace/wikirace/internal/ui"
	"github.com/wikirace/wikirace/internal/wiki"
)

func RaceCmd(configPath *string) *cobra.Command {
	var debugFlag bool
	var noCacheFlag bool

	cmd := &cobra.Command{
		Use:     "race <start> <finish>",
		Short:   "Find a chain of links from one Wikipedia page to another",
		Example: "  wikirace race Дружба Рим\n  wikirace race --no-cache Київ Море",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, finish := args[0], args[1]
			logger := logging.New(debugFlag)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			database, err := openLocalDB()
			if err != nil {
				return err
			}
			defer database.Close()

			cfg, err = config.ResolveSecrets(cfg, database)
			if err != nil {
				return err
			}
			for i := range cfg.Env {
				value, err := cfg.Env[i].GetValue()
				if err != nil {
					return err
				}
				os.Setenv(cfg.Env[i].Name, value)
			}

			cache := openPageCache(ctx, cfg, noCacheFlag)
			defer cache.close()

			client := wiki.New(wiki.Options{
				APIURL:            cfg.Wiki.APIURL,
				Language:          cfg.Wiki.Language,
				LinkLimit:         cfg.Wiki.LinkLimit,
				RequestsPerMinute: cfg.Wiki.RequestsPerMinute,
			})

			r := racer.New(client, cache, racer.Options{Workers: cfg.Search.Workers}, logger)

			ui.Info("Racing from %q to %q...", start, finish)
			result, err := r.FindPath(ctx, start, finish)
			if err != nil {
				var invalidErr *wiki.InvalidPageError
				if errors.As(err, &invalidErr) {
					return fmt.Errorf("%w; check the spelling and capitalization", invalidErr)
				}
				return err
			}

			printResult(result)
			recordRace(database, cfg, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	cmd.Flags().BoolVar(&noCacheFlag, "no-cache", false, "Skip the page cache and always hit the API")
	return cmd
}

func printResult(result racer.Result) {
	if len(result.Path) == 0 {
		ui.Warn("No path from %q to %q within two hops", result.Start, result.Finish)
	} else {
		ui.Success("%s", strings.Join(result.Path, " -> "))
	}
	ui.Debug("%d pages from API, %d from cache, took %s",
		result.PagesLoaded, result.PagesCached, result.Duration.Round(time.Millisecond))
}

func recordRace(database *db.DB, cfg config.Config, result racer.Result) {
	race := db.Race{
		ID:          result.RunID,
		Start:       result.Start,
		Finish:      result.Finish,
		Path:        result.Path,
		DurationMS:  result.Duration.Milliseconds(),
		PagesLoaded: result.PagesLoaded,
		PagesCached: result.PagesCached,
		CreatedAt:   time.Now(),
	}
	if race.Path == nil {
		race.Path = []string{}
	}
	if err := database.SaveRace(race); err != nil {
		ui.Warn("Failed to record race in history: %v", err)
		return
	}
	if _, err := database.PruneOldRaces(cfg.History.Keep); err != nil {
		ui.Warn("Failed to prune race history: %v", err)
	}
}

// pageCache wraps the PostgreSQL store so a race still works when the dev
// stack is down; it just loses caching.
type pageCache struct {
	store *store.Store
}

func openPageCache(ctx context.Context, cfg config.Config, disabled bool) *pageCache {
	if disabled {
		return &pageCache{}
	}

	openCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s, err := store.Open(openCtx, cfg.Database.DSN())
	if err != nil {
		ui.Warn("Page cache unavailable, racing without it (start it with 'wikirace stack up'): %v", err)
		return &pageCache{}
	}
	return &pageCache{store: s}
}

func (c *pageCache) GetPage(ctx context.Context, title string) (store.Page, error) {
	if c.store == nil {
		return store.Page{}, store.ErrNotFound
	}
	return c.store.GetPage(ctx, title)
}

func (c *pageCache) SavePage(ctx context.Context, page store.Page) error {
	if c.store == nil {
		return nil
	}
	return c.store.SavePage(ctx, page)
}

func (c *pageCache) close() {
	if c.store != nil {
		c.store.Close()
	}
}
