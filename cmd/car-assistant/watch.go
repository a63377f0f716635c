// cmd/car-assistant/watch.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"car-market-assistant/internal/assistant"
	"car-market-assistant/internal/ingest"

	"github.com/spf13/cobra"
)

var (
	watchDir     string
	watchHistory []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload listings dropped into a directory and answer questions from stdin",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchDir, "dir", "d", "", "upload directory (defaults to assistant.watch_dir)")
	watchCmd.Flags().StringSliceVar(&watchHistory, "history", nil, "history CSV file (repeatable)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := watchDir
	if dir == "" {
		dir = cfg.Assistant.WatchDir
	}
	if dir == "" {
		return fmt.Errorf("no upload directory: pass --dir or set assistant.watch_dir")
	}

	a := newAssistant()
	if len(watchHistory) > 0 {
		if _, err := a.LoadHistory(ctx, historySources(watchHistory)); err != nil {
			printError(err)
			return err
		}
	}

	watcher, err := ingest.NewWatcher(cfg.Assistant.WatchExtensions, log)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Stop()

	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go reloadOnEvents(ctx, a, events)

	heading("Car market assistant")
	info("Watching %s for listings files. Type a question, or 'exit' to quit.", dir)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("> ")
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			question := strings.TrimSpace(line)
			switch strings.ToLower(question) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			answer, err := a.Ask(ctx, question)
			if err != nil {
				printError(err)
			}
			if answer != nil && (answer.Aggregation != nil || answer.Trend != nil) {
				_ = render(os.Stdout, answer, formatText)
			}
		}
	}
}

func reloadOnEvents(ctx context.Context, a *assistant.Assistant, events <-chan ingest.FileEvent) {
	for ev := range events {
		ds, err := a.LoadCurrent(ctx, ingest.NewCSVSource(ev.Path))
		if err != nil {
			printError(err)
			continue
		}
		success("Loaded %s (%d rows)", ds.SourceName, ds.Len())
	}
}
