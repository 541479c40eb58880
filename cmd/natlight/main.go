// Command natlight prints today's sunrise and sunset, the colour the natural
// light curve gives for the current time and the curve itself.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/saaga0h/natlight/internal/light"
	"github.com/saaga0h/natlight/internal/plot"
	"github.com/saaga0h/natlight/internal/report"
	"github.com/saaga0h/natlight/internal/solar"
	"github.com/saaga0h/natlight/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp), errors.Is(err, context.Canceled):
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cli := pflag.NewFlagSet("natlight", pflag.ContinueOnError)
	hsv := cli.Bool("hsv", false, "Print HSV instead of RGB")
	dateArg := cli.String("date", "", "Evaluate on this date (YYYY-MM-DD) instead of today")
	timeArg := cli.String("time", "", "Evaluate at this time of day (HH:MM) instead of now")
	noPlot := cli.Bool("no-plot", false, "Do not draw the curve")

	cfg, err := config.Load(args, cli)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	logger.Debug("Configuration loaded",
		"config_file", cfg.ConfigFile,
		"latitude", cfg.Latitude,
		"longitude", cfg.Longitude)

	at, err := evaluationTime(cfg.Clock(time.Now()), *dateArg, *timeArg)
	if err != nil {
		return err
	}

	coord := cfg.Coordinate()
	sun, err := solar.SunriseSunset(at, coord)
	if err != nil {
		return fmt.Errorf("failed to calculate sun times: %w", err)
	}
	logger.Debug("Sun times", "date", at.Format(time.DateOnly), "sunrise", sun.Sunrise, "sunset", sun.Sunset)

	out, err := light.Compute(at, sun, cfg)
	if err != nil {
		return err
	}

	err = report.Write(stdout, report.Result{
		Output:   out,
		Daylight: solar.DaylightAt(at, coord),
		Now:      at,
		HSV:      *hsv,
	})
	if err != nil {
		return err
	}

	if *noPlot {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	samples := plot.Sample(sun, cfg.Schedule(), cfg.PlotColumns)
	_, err = fmt.Fprint(stdout, "\n"+plot.Curve(samples, cfg.DayColorK, cfg.NightColorK, cfg.PlotRows))
	return err
}

// evaluationTime replaces the date and/or time of day of now when given
func evaluationTime(now time.Time, dateArg, timeArg string) (time.Time, error) {
	at := now

	if dateArg != "" {
		d, err := time.ParseInLocation(time.DateOnly, dateArg, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q: %w", dateArg, err)
		}
		at = time.Date(d.Year(), d.Month(), d.Day(), at.Hour(), at.Minute(), at.Second(), 0, now.Location())
	}

	if timeArg != "" {
		tod, err := time.Parse("15:04", timeArg)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --time %q: %w", timeArg, err)
		}
		at = time.Date(at.Year(), at.Month(), at.Day(), tod.Hour(), tod.Minute(), 0, 0, now.Location())
	}

	return at, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
