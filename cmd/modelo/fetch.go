package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"strings"
	"time"

	"github.com/gogpu/modelo"
	"github.com/gogpu/modelo/internal/i18n"
	"github.com/gogpu/modelo/progress"
	"github.com/gogpu/modelo/viewer"
)

func runFetch(args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	out := fs.String("o", "", "output file (default: base name of the URL)")
	retries := fs.Int("retries", 2, "retries after an error or timeout")
	cfgPath := fs.String("config", "", "YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("fetch needs exactly one URL")
	}
	url := fs.Arg(0)
	if *out == "" {
		base, _, _ := strings.Cut(url, "?")
		*out = path.Base(base)
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	bands, _ := progress.BandsByName(cfg.Progress.Bands)
	lang := i18n.Match(cfg.Locale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sh := modelo.New(viewer.NewElement("viewer"),
		modelo.WithLanguage(lang),
		modelo.WithTrackerOptions(
			progress.WithTimeout(cfg.Timing.LoadTimeout),
			progress.WithBands(bands),
		),
	)
	defer sh.Close()

	sh.Tracker().Subscribe(func(s progress.Snapshot) {
		fmt.Fprintf(os.Stderr, "\r[attempt %d] %-40s", s.Attempt, s.Message)
		if s.State.Terminal() {
			fmt.Fprintln(os.Stderr)
		}
	})

	var buf bytes.Buffer
	_, err = sh.Fetch(ctx, url, &buf)
	for attempt := 0; err != nil && attempt < *retries; attempt++ {
		if ctx.Err() != nil || !sh.Tracker().Snapshot().State.Retryable() {
			break
		}
		select {
		case <-ctx.Done():
		case <-time.After(cfg.Timing.RetryDelay):
		}
		if ctx.Err() != nil {
			break
		}
		buf.Reset()
		_, err = sh.RetryFetch(ctx, &buf)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(*out, buf.Bytes(), 0o644); err != nil {
		return err
	}
	snap := sh.Tracker().Snapshot()
	modelo.Logger().Info("modelo: model saved",
		"file", *out, "bytes", buf.Len(), "attempts", snap.Attempt)
	return nil
}
