// Command mindflux reviews a concept-graph deck stored in a local database.
//
//	mindflux import deck.yaml
//	mindflux due
//	mindflux review
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sky-flux/mindflux"
	"github.com/sky-flux/mindflux/badgerstore"
	"github.com/sky-flux/mindflux/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the state shared by every command of one invocation.
type app struct {
	configPath string
	storePath  string
	nowFlag    string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "mindflux",
		Short:        "Review a concept graph in the order its questions connect",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.storePath, "store", "", "database directory (overrides store.path)")
	root.PersistentFlags().StringVar(&a.nowFlag, "now", "", "evaluate due items at this RFC 3339 time")
	_ = root.PersistentFlags().MarkHidden("now")

	root.AddCommand(
		newImportCmd(a),
		newDueCmd(a),
		newNextCmd(a),
		newReviewCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.storePath != "" {
		cfg.Store.Path = a.storePath
		cfg.Store.InMemory = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.NewLogger(stderr)
	return nil
}

func (a *app) clock() (func() time.Time, error) {
	if a.nowFlag == "" {
		return time.Now, nil
	}
	now, err := time.Parse(time.RFC3339, a.nowFlag)
	if err != nil {
		return nil, fmt.Errorf("--now: %w", err)
	}
	return func() time.Time { return now }, nil
}

func (a *app) openStore() (*badgerstore.Store, error) {
	now, err := a.clock()
	if err != nil {
		return nil, err
	}
	return badgerstore.Open(badgerstore.Config{
		Path:       a.cfg.Store.Path,
		InMemory:   a.cfg.Store.InMemory,
		SyncWrites: true,
		Logger:     a.logger.With(slog.String("component", "badger")),
		Limits:     a.cfg.DueLimits(),
		Now:        now,
	})
}

func (a *app) scheduler(store *badgerstore.Store) (*mindflux.Scheduler, error) {
	return mindflux.NewScheduler(store, store, mindflux.SchedulerConfig{
		Seed:   a.cfg.Scheduler.Seed,
		Logger: a.logger,
	})
}
