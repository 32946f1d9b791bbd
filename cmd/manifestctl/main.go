// Package main provides manifestctl, the operator CLI for the manifest
// normalization pipeline: normalize files to canonical CSV locally, or
// normalize and load them into the ClickHouse analytics store.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"manifest-pipeline/db/clickhouse"
	"manifest-pipeline/internal/decode"
	"manifest-pipeline/internal/mapping"
	"manifest-pipeline/internal/pipeline"
	"manifest-pipeline/pkg/platform"
	"manifest-pipeline/pkg/schema"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	platform.InitLogger()

	app := &cli.App{
		Name:    "manifestctl",
		Usage:   "Normalize liquidation-auction manifests into the canonical 7-column schema",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "manifests",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Commands: []*cli.Command{
			normalizeCommand(),
			loadCommand(),
			sitesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func manifestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "Path to the manifest file (.csv or .xlsx)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "site",
			Aliases:  []string{"s"},
			Usage:    "Retailer site tag selecting the field mapping",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "format",
			Usage: "Manifest encoding (csv, xlsx); inferred from the extension when omitted",
		},
		&cli.StringFlag{
			Name:  "auction-url",
			Usage: "Auction page URL stamped onto the batch",
		},
		&cli.StringFlag{
			Name:  "bid-price",
			Usage: "Winning bid amount for the batch",
		},
		&cli.StringFlag{
			Name:  "shipping-fee",
			Usage: "Shipping fee for the batch",
		},
	}
}

func normalizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "normalize",
		Usage: "Normalize one manifest file to canonical CSV",
		Flags: append(manifestFlags(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output file (default: stdout)",
			},
		),
		Action: runNormalize,
	}
}

func runNormalize(c *cli.Context) error {
	outcome, _, err := processManifest(c)
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, []byte(outcome.CSV), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("path", out).Int("rows", outcome.Report.OutputRows).Msg("canonical csv written")
		return nil
	}
	_, err = fmt.Fprint(os.Stdout, outcome.CSV)
	return err
}

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:   "load",
		Usage:  "Normalize one manifest file and load it into ClickHouse",
		Flags:  manifestFlags(),
		Action: runLoad,
	}
}

func runLoad(c *cli.Context) error {
	outcome, meta, err := processManifest(c)
	if err != nil {
		return err
	}

	store, err := clickhouse.NewStore(&clickhouse.Config{
		Host:     c.String("clickhouse-host"),
		Port:     c.Int("clickhouse-port"),
		Database: c.String("clickhouse-database"),
		Username: c.String("clickhouse-user"),
		Password: c.String("clickhouse-password"),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	batch := &clickhouse.ManifestBatch{
		ID:              uuid.New(),
		SiteTag:         outcome.Report.SiteTag,
		Filename:        outcome.Report.Filename,
		AuctionURL:      meta.AuctionURL,
		BidPrice:        derefOrZero(meta.BidPrice),
		ShippingFee:     derefOrZero(meta.ShippingFee),
		SourceRows:      outcome.Report.SourceRows,
		OutputRows:      outcome.Report.OutputRows,
		DroppedRows:     outcome.Report.DroppedRows,
		PlaceholderRows: outcome.Report.PlaceholderRows,
		ProcessedAt:     outcome.Report.ProcessedAt,
	}
	if err := store.InsertBatch(ctx, batch, outcome.Rows); err != nil {
		return err
	}

	log.Info().
		Str("batch_id", batch.ID.String()).
		Str("site", batch.SiteTag).
		Int("rows", batch.OutputRows).
		Msg("batch loaded into clickhouse")
	return nil
}

func sitesCommand() *cli.Command {
	return &cli.Command{
		Name:  "sites",
		Usage: "List known retailer site tags",
		Action: func(c *cli.Context) error {
			reg := mapping.NewRegistry()
			tags := reg.Tags()
			sort.Strings(tags)
			for _, tag := range tags {
				if reg.UsesRecoveryParser(tag) {
					fmt.Printf("%s\t(recovery parser)\n", tag)
					continue
				}
				fmt.Println(tag)
			}
			return nil
		},
	}
}

// processManifest runs decode + pipeline for the shared manifest flags.
func processManifest(c *cli.Context) (*pipeline.Outcome, schema.BatchMetadata, error) {
	input := c.String("input")
	siteTag := c.String("site")
	filename := filepath.Base(input)

	format := decode.Format(strings.ToLower(c.String("format")))
	if format == "" {
		detected, err := decode.DetectFormat(filename)
		if err != nil {
			return nil, schema.BatchMetadata{}, err
		}
		format = detected
	}

	meta := schema.BatchMetadata{AuctionURL: c.String("auction-url")}
	var err error
	if meta.BidPrice, err = optionalPrice(c.String("bid-price")); err != nil {
		return nil, schema.BatchMetadata{}, fmt.Errorf("invalid --bid-price: %w", err)
	}
	if meta.ShippingFee, err = optionalPrice(c.String("shipping-fee")); err != nil {
		return nil, schema.BatchMetadata{}, fmt.Errorf("invalid --shipping-fee: %w", err)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, schema.BatchMetadata{}, fmt.Errorf("read manifest: %w", err)
	}

	table, err := decode.Decode(data, format, siteTag, filename)
	if err != nil {
		return nil, schema.BatchMetadata{}, err
	}

	outcome, err := pipeline.Run(table, meta, mapping.NewRegistry())
	if err != nil {
		return nil, schema.BatchMetadata{}, err
	}

	log.Info().
		Str("site", siteTag).
		Str("filename", filename).
		Int("source_rows", outcome.Report.SourceRows).
		Int("parsed_items", outcome.Report.ParsedItems).
		Int("dropped_rows", outcome.Report.DroppedRows).
		Int("placeholder_rows", outcome.Report.PlaceholderRows).
		Int("merged_rows", outcome.Report.MergedRows).
		Int("output_rows", outcome.Report.OutputRows).
		Msg("manifest processed")
	return outcome, meta, nil
}

func optionalPrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func derefOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
