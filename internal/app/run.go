// Package app wires fetching, decoding, extraction, and serialization into
// the per-locator pipeline behind the microdata CLI.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gomicrodata/internal/cache"
	"github.com/hyperifyio/gomicrodata/internal/dom"
	"github.com/hyperifyio/gomicrodata/internal/fetch"
	"github.com/hyperifyio/gomicrodata/internal/microdata"
)

// Run fetches each locator in order, extracts its microdata, and writes one
// JSON document per locator to out. A failing locator is logged with its
// error and processing continues; Run returns an error when any locator
// failed so callers can exit non-zero.
func Run(ctx context.Context, cfg Config, locators []string, out io.Writer) error {
	client := &fetch.Client{
		UserAgent:         cfg.UserAgent,
		MaxAttempts:       cfg.MaxAttempts,
		PerRequestTimeout: cfg.Timeout,
	}
	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			if err := cache.ClearDir(cfg.CacheDir); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("clear cache")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("purge cache")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired cache entries")
			}
		}
		client.Cache = &cache.PageCache{Dir: cfg.CacheDir}
	}

	failed := 0
	for _, loc := range locators {
		log.Info().Str("url", loc).Msg("fetching")
		if err := processOne(ctx, client, loc, out); err != nil {
			failed++
			log.Error().Str("url", loc).Err(err).Msg("extraction failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d locators failed", failed, len(locators))
	}
	return nil
}

func processOne(ctx context.Context, client *fetch.Client, loc string, out io.Writer) error {
	page, err := client.Get(ctx, loc)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	doc, err := dom.ParseBytes(page.Body, fetch.Charset(page.ContentType), page.URL)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	items := microdata.FromDocument(doc)
	log.Debug().Str("url", loc).Int("items", len(items)).Msg("extracted")
	// Marshal the whole document before writing anything so a failure can
	// never leave a truncated JSON document on the output stream.
	b, err := microdata.Doc(items)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := fmt.Fprintf(out, "%s\n", b); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
