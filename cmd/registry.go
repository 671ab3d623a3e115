package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/provdir/internal/model"
	"github.com/sells-group/provdir/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Manage the NPI registry backend",
	Long:  "Commands for importing registry snapshots into SQLite and resolving single NPI entries.",
}

// -- registry import --

var registryImportCmd = &cobra.Command{
	Use:   "import <snapshot.json>",
	Short: "Import a JSON registry snapshot into SQLite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, _ := cmd.Flags().GetString("db")
		if db == "" {
			db = cfg.Registry.Path
		}
		if db == "" {
			return eris.New("registry import: --db or registry.path is required")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "registry import: read snapshot")
		}
		var entries []model.PartialRecord
		if err := json.Unmarshal(data, &entries); err != nil {
			return eris.Wrap(err, "registry import: unmarshal snapshot")
		}

		sq, err := registry.NewSQLite(db)
		if err != nil {
			return err
		}
		defer sq.Close() //nolint:errcheck

		if err := sq.Migrate(ctx); err != nil {
			return err
		}

		n, err := sq.Import(ctx, entries)
		if err != nil {
			return err
		}

		zap.L().Info("registry snapshot imported",
			zap.String("db", db),
			zap.Int("entries", n),
			zap.Int("skipped", len(entries)-n),
		)
		fmt.Fprintf(os.Stdout, "Imported %d of %d entries into %s\n", n, len(entries), db)
		return nil
	},
}

// -- registry get --

var registryGetCmd = &cobra.Command{
	Use:   "get <npi>",
	Short: "Resolve one NPI against the configured backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		reg, err := initRegistry()
		if err != nil {
			return err
		}
		if c, ok := reg.(interface{ Close() error }); ok {
			defer c.Close() //nolint:errcheck
		}

		entry, err := reg.Lookup(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "registry get")
		}
		if entry == nil {
			fmt.Fprintf(os.Stderr, "No entry for NPI %s.\n", args[0])
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	registryImportCmd.Flags().String("db", "", "SQLite database path (default: registry.path)")

	registryCmd.AddCommand(registryImportCmd)
	registryCmd.AddCommand(registryGetCmd)
	rootCmd.AddCommand(registryCmd)
}
