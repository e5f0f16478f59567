package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gomicrodata/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		ua          string
		timeout     time.Duration
		attempts    int
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
		configPath  string
		verbose     bool
	)

	flag.StringVar(&ua, "ua", "gomicrodata/1.0 (+https://github.com/hyperifyio/gomicrodata)", "User-Agent for fetches")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")
	flag.IntVar(&attempts, "attempts", 2, "Fetch attempts per locator, including the first")
	flag.StringVar(&cacheDir, "cache.dir", os.Getenv("MICRODATA_CACHE_DIR"), "Page cache directory; empty disables caching")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.StringVar(&configPath, "config", os.Getenv("MICRODATA_CONFIG"), "Optional YAML config file")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] URL [URL ...]\n\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Fetches each URL and prints its microdata items as a JSON document.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		UserAgent:   ua,
		Timeout:     timeout,
		MaxAttempts: attempts,
		CacheDir:    cacheDir,
		CacheMaxAge: cacheMaxAge,
		CacheClear:  cacheClear,
		Verbose:     verbose,
	}

	if configPath != "" {
		fc, err := app.LoadFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config file")
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if err := fc.Apply(&cfg, func(name string) bool { return set[name] }); err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("apply config file")
		}
		if cfg.Verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, flag.Args()); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config, locators []string) error {
	return app.Run(context.Background(), cfg, locators, os.Stdout)
}
