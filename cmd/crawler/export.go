package main

import (
	"fmt"

	"github.com/alvmarrod/sidebar-weaver/internal/memory"
	"github.com/alvmarrod/sidebar-weaver/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// DefaultExportDBPath is where export writes when --db is not given
const DefaultExportDBPath = "graph.db"

// NewExportCmd creates the export subcommand
func NewExportCmd() *cobra.Command {
	var crawledPath, dbPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a visited-map snapshot into a SQLite graph database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adjacency, err := storage.LoadVisited(crawledPath)
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", crawledPath, err)
			}
			return exportGraph(dbPath, memory.FromAdjacency(adjacency))
		},
	}

	cmd.Flags().StringVar(&crawledPath, "crawled", storage.DefaultFinalVisitedPath, "visited-map JSON to export")
	cmd.Flags().StringVar(&dbPath, "db", DefaultExportDBPath, "SQLite database to write")

	return cmd
}

// exportGraph flushes the graph into the SQLite database at dbPath
func exportGraph(dbPath string, graph *memory.Graph) error {
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	if err := graph.Flush(store); err != nil {
		return fmt.Errorf("failed to flush graph: %w", err)
	}

	communities, edges, err := store.Stats()
	if err != nil {
		return err
	}
	logrus.Infof("Database %s holds %d communities and %d edges", dbPath, communities, edges)
	return nil
}
