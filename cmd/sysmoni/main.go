package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dicklesworthstone/sysmoni/internal/config"
	"github.com/Dicklesworthstone/sysmoni/internal/hostinfo"
	"github.com/Dicklesworthstone/sysmoni/internal/logging"
	"github.com/Dicklesworthstone/sysmoni/internal/model"
	"github.com/Dicklesworthstone/sysmoni/internal/procfs"
	"github.com/Dicklesworthstone/sysmoni/internal/sampler"
	"github.com/Dicklesworthstone/sysmoni/internal/ui"
)

// report is the one-shot JSON document.
type report struct {
	Host   hostinfo.Info `json:"host"`
	Sample model.Sample  `json:"sample"`
}

func main() {
	cfg, err := config.FromFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "sysmoni: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "sysmoni: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger, closer, err := logging.Open(cfg.LogFile, level)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reader := procfs.New(
		procfs.WithRoots(cfg.ProcRoot, cfg.SysRoot),
		procfs.WithLogger(logger),
	)
	smp := sampler.New(reader, cfg, sampler.WithLogger(logger))
	logger.Info("starting", "interval", cfg.Interval, "proc_interval", cfg.ProcInterval,
		"proc_root", cfg.ProcRoot, "json", cfg.JSON, "json_stream", cfg.JSONStream)

	switch {
	case cfg.JSON:
		return oneShot(ctx, os.Stdout, smp, cfg.Interval)
	case cfg.JSONStream:
		return stream(ctx, os.Stdout, smp, logger)
	default:
		return ui.RunTUI(cfg, smp, hostinfo.Collect(ctx))
	}
}

// oneShot takes two samples one interval apart so rates are populated.
func oneShot(ctx context.Context, w io.Writer, smp *sampler.Sampler, interval time.Duration) error {
	smp.RefreshAddrs(ctx)
	smp.Sample(time.Now())
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(interval):
	}
	out := report{Host: hostinfo.Collect(ctx), Sample: smp.Sample(time.Now())}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func stream(ctx context.Context, w io.Writer, smp *sampler.Sampler, logger *slog.Logger) error {
	enc := json.NewEncoder(w)
	for s := range smp.Stream(ctx) {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode sample: %w", err)
		}
	}
	logger.Info("stream stopped")
	return nil
}
