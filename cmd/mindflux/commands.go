package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sky-flux/mindflux"
	"github.com/sky-flux/mindflux/deck"
)

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <deck.yaml>",
		Short: "Load a YAML deck into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := deck.Load(args[0])
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Import(d.Nodes, d.Items); err != nil {
				return err
			}
			a.logger.Info("deck imported", "path", args[0], "nodes", len(d.Nodes), "items", len(d.Items))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d nodes, %d items\n", len(d.Nodes), len(d.Items))
			return nil
		},
	}
}

func newDueCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show how many items are due in each tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			for _, tier := range mindflux.DueTiers {
				refs, err := store.DuePerTier(cmd.Context(), tier)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%-9s %d\n", tier, len(refs))
				if list {
					for _, ref := range refs {
						fmt.Fprintf(out, "  %s\n", ref)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list the due items")
	return cmd
}

func newNextCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Print the item a new session would start with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			sched, err := a.scheduler(store)
			if err != nil {
				return err
			}

			ref, ok, err := sched.Next(cmd.Context(), mindflux.NewSession())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing due")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ref, ref.Tier)
			return nil
		},
	}
}

func newReviewCmd(a *app) *cobra.Command {
	var (
		interval time.Duration
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review due items interactively",
		Long: `Review presents due items one at a time in concept-graph order.
Press enter once an item has been answered, or type q to stop.
Answered items are rescheduled after --interval. Intervals ending before
midnight keep the item in the learning queue at its exact due time, so
they must exceed the learn-ahead window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				return errors.New("--interval must be positive")
			}
			if ahead := a.cfg.DueLimits().LearnAheadWindow(); interval <= ahead {
				return fmt.Errorf("--interval must exceed the learn-ahead window (%s)", ahead)
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			sched, err := a.scheduler(store)
			if err != nil {
				return err
			}
			now, err := a.clock()
			if err != nil {
				return err
			}

			r := &reviewer{
				next: func(sess *mindflux.Session) (mindflux.ItemRef, bool, error) {
					return sched.Next(cmd.Context(), sess)
				},
				answer: func(ref mindflux.ItemRef) error {
					return store.MarkReviewed(ref.ItemID, now().Add(interval))
				},
				in:    bufio.NewScanner(cmd.InOrStdin()),
				out:   cmd.OutOrStdout(),
				limit: limit,
			}
			n, err := r.run(mindflux.NewSession())
			a.logger.Info("review finished", "answered", n)
			return err
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 24*time.Hour, "delay before an answered item is due again")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many items (0 means no limit)")
	return cmd
}

// reviewer drives one interactive session.
type reviewer struct {
	next   func(*mindflux.Session) (mindflux.ItemRef, bool, error)
	answer func(mindflux.ItemRef) error
	in     *bufio.Scanner
	out    io.Writer
	limit  int
}

// run returns the number of items answered.
func (r *reviewer) run(sess *mindflux.Session) (int, error) {
	answered := 0
	for r.limit <= 0 || answered < r.limit {
		ref, ok, err := r.next(sess)
		if err != nil {
			return answered, err
		}
		if !ok {
			fmt.Fprintln(r.out, "nothing due")
			return answered, nil
		}
		fmt.Fprintf(r.out, "[%d] %s (%s) > ", sess.Depth(), ref, ref.Tier)
		if !r.in.Scan() {
			fmt.Fprintln(r.out)
			return answered, r.in.Err()
		}
		if strings.EqualFold(strings.TrimSpace(r.in.Text()), "q") {
			return answered, nil
		}
		sess.EnterOrContinue(ref)
		if err := r.answer(ref); err != nil {
			return answered, err
		}
		answered++
	}
	return answered, nil
}
