package cli

import (
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/docuflow-labs/docuflow/internal/adapters/driven/filewatcher"
	"github.com/docuflow-labs/docuflow/internal/core/ports/driven"
	"github.com/docuflow-labs/docuflow/internal/logger"
)

var watchWorkers int

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Auto-ingest documents dropped into a directory",
	Long: `Watches a drop folder and ingests every new or rewritten scan.
Deleting a file removes the matching document from the index.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "concurrent ingestions (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, err := runtime.IngestService()
	if err != nil {
		return err
	}

	watcher, err := filewatcher.New()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Stop() }()

	ctx := cmd.Context()
	events, err := watcher.Watch(ctx, args[0])
	if err != nil {
		return err
	}

	workers := watchWorkers
	if workers <= 0 {
		workers = runtime.Settings().Pipeline.Workers
	}
	cmd.Printf("Watching %s (%d workers). Press Ctrl+C to stop.\n", args[0], workers)

	// A file still being ingested is not picked up again; the write
	// burst fsnotify emits for one copy would otherwise ingest it twice.
	var mu sync.Mutex
	inflight := make(map[string]struct{})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for event := range events {
		switch event.Operation {
		case driven.FileCreated, driven.FileModified:
			mu.Lock()
			if _, busy := inflight[event.Path]; busy {
				mu.Unlock()
				continue
			}
			inflight[event.Path] = struct{}{}
			mu.Unlock()

			g.Go(func() error {
				defer func() {
					mu.Lock()
					delete(inflight, event.Path)
					mu.Unlock()
				}()

				doc, err := loadDocument(event.Path)
				if err != nil {
					logger.Warn("Skipping %s: %v", event.Path, err)
					return nil
				}
				receipt, err := svc.Ingest(gctx, doc)
				if err != nil {
					cmd.Printf("%s: ingest failed: %v\n", doc.Filename, err)
					return nil
				}
				cmd.Printf("%s: %s (%d chunks)\n",
					doc.Filename, receipt.Verdict.Recommendation, receipt.ChunksStored)
				return nil
			})

		case driven.FileDeleted:
			doc := documentID(event.Path)
			removed, err := svc.Delete(ctx, doc)
			if err != nil {
				cmd.Printf("%s: delete failed: %v\n", doc, err)
				continue
			}
			if removed > 0 {
				cmd.Printf("%s: removed %d chunks\n", doc, removed)
			}
		}
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("watch workers: %w", err)
	}
	return nil
}
