// Package main is the driverslog command line client. It wires the
// config, cache, and API client together and maps one subcommand onto
// each trip operation. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/simplydispatch/driverslog/internal/api"
	"github.com/simplydispatch/driverslog/internal/config"
	"github.com/simplydispatch/driverslog/internal/domain"
	"github.com/simplydispatch/driverslog/internal/draft"
	"github.com/simplydispatch/driverslog/internal/export"
	"github.com/simplydispatch/driverslog/internal/geocode"
	"github.com/simplydispatch/driverslog/internal/session"
	"github.com/simplydispatch/driverslog/internal/store"
)

const usage = `usage: driverslog <command> [flags]

commands:
  register   create a driver account
  login      sign in and cache the apikey
  start      start today's trip
  add        add an activity to the current trip
  wait       record a waiting period on the current trip
  finish     finish the current trip
  timeline   print today's trip timeline
  export     write the daily log as CSV or PDF
  locations  look up address suggestions for a query
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	app, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app bundles the wired dependencies every subcommand shares.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	cache  *store.SQLite
	client *api.Client
	trips  *session.Service
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	cache, err := store.OpenSQLite(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	client := api.New(cfg.APIBaseURL, cfg.HTTPTimeout)

	// The env var wins over a cached token from a previous login.
	key := cfg.APIKey
	if key == "" {
		cached, err := cache.Get(context.Background(), store.KeyToken)
		if err == nil {
			key = cached
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("read cached token: %w", err)
		}
	}
	client.SetAPIKey(key)

	trips := session.New(client, cache, logger)
	if err := trips.Reload(context.Background()); err != nil {
		return nil, fmt.Errorf("reload session: %w", err)
	}

	return &app{cfg: cfg, log: logger, cache: cache, client: client, trips: trips}, nil
}

func (a *app) close() {
	if err := a.cache.Close(); err != nil {
		a.log.Warn("closing cache failed", "error", err)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.register(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "start":
		return a.start(ctx, args)
	case "add":
		return a.add(ctx, args, false)
	case "wait":
		return a.add(ctx, args, true)
	case "finish":
		return a.finish(ctx, args)
	case "timeline":
		return a.timeline(ctx)
	case "export":
		return a.export(ctx, args)
	case "locations":
		return a.locations(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	name := fs.String("name", "", "driver name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if err := a.client.Register(ctx, *name, *email, *password); err != nil {
		return err
	}
	fmt.Println("account created; run `driverslog login`")
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	key, err := a.client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	if err := a.cache.Set(ctx, store.KeyToken, key); err != nil {
		return fmt.Errorf("cache token: %w", err)
	}
	fmt.Println("signed in")
	return nil
}

// startFlags registers the fields shared by start and finish.
func startFlags(fs *flag.FlagSet) *session.StartDetails {
	d := &session.StartDetails{}
	fs.StringVar(&d.Activity, "activity", "", "primary activity, e.g. \"Start Day\"")
	fs.StringVar(&d.Location, "location", "", "location name or address")
	fs.StringVar(&d.Clock, "time", "", "24-hour clock time, HH:MM")
	fs.StringVar(&d.Truck, "truck", "", "truck unit")
	fs.StringVar(&d.Trailer, "trailer", "", "trailer unit")
	fs.StringVar(&d.Odometer, "odometer", "", "odometer reading")
	fs.Float64Var(&d.Lat, "lat", 0, "latitude")
	fs.Float64Var(&d.Long, "long", 0, "longitude")
	return d
}

func (a *app) start(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	details := startFlags(fs)
	fs.Parse(args)

	started, err := a.trips.Start(ctx, *details)
	if err != nil {
		return err
	}
	fmt.Printf("trip %s started; activities accepted until %s\n", started.TripNumber, started.MaxActivityLimit)
	return nil
}

func (a *app) finish(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("finish", flag.ExitOnError)
	details := session.FinishDetails{}
	details.StartDetails = *startFlags(fs)
	fs.StringVar(&details.RouteNumber, "route", "", "route number")
	fs.Parse(args)

	finished, err := a.trips.Finish(ctx, details)
	if err != nil {
		return err
	}
	fmt.Printf("trip %s finished\n", finished.TripNumber)
	return nil
}

// add handles both ordinary activities and waiting periods; waiting
// validates against the waiting allow-list and requires a time range.
func (a *app) add(ctx context.Context, args []string, waiting bool) error {
	name := "add"
	if waiting {
		name = "wait"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	activity := fs.String("activity", "", "activity type")
	location := fs.String("location", "", "location name or address")
	at := fs.String("time", "", "point time, HH:MM")
	from := fs.String("from", "", "range start, HH:MM")
	to := fs.String("to", "", "range end, HH:MM")
	qty := fs.String("qty", "", "quantity")
	loadType := fs.String("type", "", "load type")
	party := fs.String("party", "", "shipper or consignee name")
	notes := fs.String("notes", "", "free-form notes")
	tracking := fs.String("tracking", "", "tracking number")
	fs.Parse(args)

	d := draft.New()
	d.Allowed = a.allowList(ctx, waiting)
	if *loadType != "" {
		if types, err := a.client.LoadTypes(ctx); err == nil {
			d.AllowedLoadTypes = types
		}
	}
	d.Activity = *activity
	d.Location = *location
	d.Clock = *at
	d.FromClock = *from
	d.ToClock = *to
	d.SetQuantity(*qty)
	d.LoadType = *loadType
	d.PartyName = *party
	d.Notes = *notes
	d.SetTrackingNumber(*tracking)

	if waiting && (d.FromClock == "" || d.ToClock == "") {
		return fmt.Errorf("%w: a waiting period needs -from and -to", domain.ErrValidation)
	}

	entry, err := d.ToActivityEntry()
	if err != nil {
		return err
	}
	if err := a.trips.AddActivity(ctx, entry); err != nil {
		return err
	}
	fmt.Printf("%s recorded\n", entry.Activity)
	return nil
}

// allowList fetches the server's activity allow-list, best effort. A
// failed fetch returns an empty list, which permits everything; the
// server still has the final say on submission.
func (a *app) allowList(ctx context.Context, waiting bool) domain.AllowList {
	dropdowns, err := a.client.ActivityDropdowns(ctx)
	if err != nil {
		a.log.Warn("dropdown fetch failed; skipping local allow-list check", "error", err)
		return nil
	}
	if waiting {
		return dropdowns.Waiting
	}
	return dropdowns.Activity
}

func (a *app) timeline(ctx context.Context) error {
	tl := a.trips.Timeline(ctx)
	if len(tl.Rows) == 0 {
		fmt.Println("no trip started today")
		return nil
	}
	for _, row := range tl.Rows {
		line := fmt.Sprintf("%-8s %-20s %-21s %s", row.Marker, row.TimeDisplay, row.Label, row.Location)
		if row.QuantityDisplay != "" {
			line += "  [" + row.QuantityDisplay + "]"
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
	if tl.NeedsFinish {
		fmt.Println("trip in progress: run `driverslog finish` to close the day")
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "csv", "output format: csv or pdf")
	out := fs.String("out", "", "output file (default stdout for csv, required for pdf)")
	fs.Parse(args)

	tl := a.trips.Timeline(ctx)

	switch *format {
	case "csv":
		w := os.Stdout
		if *out != "" {
			f, err := os.Create(*out)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		return export.WriteCSV(w, tl)
	case "pdf":
		if *out == "" {
			return fmt.Errorf("%w: pdf export needs -out", domain.ErrValidation)
		}
		data, err := export.WritePDF(a.trips.Current().TripNumber, tl, time.Now())
		if err != nil {
			return err
		}
		return os.WriteFile(*out, data, 0o644)
	default:
		return fmt.Errorf("%w: unknown format %q", domain.ErrValidation, *format)
	}
}

func (a *app) locations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("locations", flag.ExitOnError)
	query := fs.String("q", "", "free-text location query")
	fs.Parse(args)

	if a.cfg.GeocodeURL == "" {
		return fmt.Errorf("%w: GEOCODE_URL is not configured", domain.ErrValidation)
	}

	gc := geocode.New(a.cfg.GeocodeURL, a.cfg.GeocodeAPIKey, a.cfg.HTTPTimeout, a.log)
	suggestions := gc.Lookup(ctx, *query)
	if len(suggestions) == 0 {
		fmt.Println("no suggestions")
		return nil
	}
	for _, s := range suggestions {
		fmt.Println(s.FormattedAddress)
	}
	return nil
}
