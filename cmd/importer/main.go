package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"github.com/jaki95/mixplayer/internal/domain"
	"github.com/jaki95/mixplayer/internal/tracklist"
)

func main() {
	kind := flag.String("kind", "", "Tracklist source kind: 1001tracklists or csv (guessed when empty)")
	source := flag.String("source", "", "Tracklist URL or CSV file to import")
	out := flag.String("out", "", "Write the imported tracks as JSON to this file (default stdout)")
	mixesPath := flag.String("mixes", "", "mixes.json to update in place")
	key := flag.String("key", "", "Mix key whose tracks are replaced, used with -mixes and -source")
	batchPath := flag.String("batch", "", "CSV of mixKey,source lines imported into -mixes")
	verbose := flag.Bool("v", false, "Verbose logging")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case *batchPath != "":
		if *mixesPath == "" {
			fail("Missing required flag: -mixes (with -batch)")
		}
		err = runBatch(ctx, *kind, *batchPath, *mixesPath)
	case *source != "":
		err = runSingle(ctx, *kind, *source, *out, *mixesPath, *key)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err.Error())
	}
}

func fail(msg string) {
	slog.Error(msg)
	os.Exit(1)
}

func runSingle(ctx context.Context, kind, source, out, mixesPath, key string) error {
	importer, err := tracklist.NewImporter(kind, source)
	if err != nil {
		return err
	}

	slog.Info("Importing tracklist", "importer", importer.Name(), "source", source)
	tracks, err := importer.Import(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", source, err)
	}
	slog.Info("Imported tracks", "count", len(tracks))

	if mixesPath != "" {
		if key == "" {
			return fmt.Errorf("missing required flag: -key (with -mixes)")
		}
		updated, err := mergeTracks(mixesPath, map[string][]domain.Track{key: tracks})
		if err != nil {
			return err
		}
		slog.Info("Updated mixes file", "file", mixesPath, "mixes", updated)
		return nil
	}

	return writeTracks(out, tracks)
}

func runBatch(ctx context.Context, kind, batchPath, mixesPath string) error {
	entries, err := readBatch(batchPath)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(
		len(entries),
		progressbar.OptionSetWriter(ansi.NewAnsiStderr()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Importing tracklists...[reset]"),
	)

	updates := make(map[string][]domain.Track, len(entries))
	var failed int
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		importer, err := tracklist.NewImporter(kind, entry.Source)
		if err != nil {
			return err
		}
		tracks, err := importer.Import(ctx, entry.Source)
		if err != nil {
			failed++
			slog.Warn("Import failed", "key", entry.Key, "source", entry.Source, "error", err)
		} else {
			updates[entry.Key] = tracks
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	updated, err := mergeTracks(mixesPath, updates)
	if err != nil {
		return err
	}
	slog.Info("Batch import finished", "imported", len(updates), "failed", failed, "updated", updated)
	return nil
}

func writeTracks(out string, tracks []domain.Track) error {
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0644)
}
