// Command graphcore-demo is a small, self-contained worked example of the
// graphcore engine: it seeds a toy badger-backed fact store, materializes
// those facts into an in-memory sqlite database, wires a rule.Registry of
// sqlfn.SQLQuery rules over it, and runs a query or explain through
// graphcore.Engine. Mirrors the teacher's cmd/datalog shape (a single
// binary with a demo dataset baked in), rebuilt as two cobra subcommands.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/wbrown/graphcore/graphcore"
	"github.com/wbrown/graphcore/graphcore/gclog"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "graphcore-demo",
		Short: "A worked example of the graphcore path-query engine",
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "print a gclog event per pipeline step")

	root.AddCommand(queryCmd(&verbose), explainCmd(&verbose))
	return root
}

func queryCmd(verbose *bool) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "query <json>",
		Short: "Run a declarative path query against the demo dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := setupEngine(*verbose)
			if err != nil {
				return err
			}
			defer closeFn()

			q, err := parseQuery(args[0])
			if err != nil {
				return err
			}

			var limitPtr *int
			if limit > 0 {
				limitPtr = &limit
			}

			rows, err := engine.Query(q, limitPtr)
			if err != nil {
				return err
			}
			return printJSON(rows)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "truncate the result to this many top-level rows (0 = unlimited)")
	return cmd
}

func explainCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <json>",
		Short: "Show the call graph a query would plan and execute, without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, closeFn, err := setupEngine(*verbose)
			if err != nil {
				return err
			}
			defer closeFn()

			q, err := parseQuery(args[0])
			if err != nil {
				return err
			}

			out, err := engine.Explain(q)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}

// setupEngine seeds the toy dataset and builds an Engine over it. closeFn
// releases the sqlite handle and must be called once the command is done.
func setupEngine(verbose bool) (*graphcore.Engine, func(), error) {
	badgerDB, err := openBadger()
	if err != nil {
		return nil, nil, fmt.Errorf("graphcore-demo: opening badger: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		badgerDB.Close()
		return nil, nil, fmt.Errorf("graphcore-demo: opening sqlite: %w", err)
	}

	closeFn := func() {
		sqlDB.Close()
		badgerDB.Close()
	}

	if err := seedBadger(badgerDB); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("graphcore-demo: seeding badger: %w", err)
	}
	if err := materializeSQLite(badgerDB, sqlDB); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("graphcore-demo: materializing sqlite: %w", err)
	}

	registry := buildRegistry(sqlDB)

	opts := graphcore.DefaultOptions()
	if verbose {
		opts.Collector = gclog.NewPrinter(os.Stderr)
	}

	return graphcore.New(registry, opts), closeFn, nil
}

func parseQuery(raw string) (map[string]interface{}, error) {
	var q map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return nil, fmt.Errorf("graphcore-demo: parsing query JSON: %w", err)
	}
	return q, nil
}

func printJSON(rows []map[string]interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
