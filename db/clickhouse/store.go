// Package clickhouse persists normalized manifest batches for downstream
// finance analytics. Columnar storage suits the workload: wide scans over
// item rows, grouped by batch, never updated in place.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"manifest-pipeline/pkg/schema"
)

// ManifestBatch is one processed source file.
type ManifestBatch struct {
	ID              uuid.UUID
	SiteTag         string
	Filename        string
	AuctionURL      string
	BidPrice        decimal.Decimal
	ShippingFee     decimal.Decimal
	SourceRows      int
	OutputRows      int
	DroppedRows     int
	PlaceholderRows int
	ProcessedAt     time.Time
	CreatedAt       time.Time
}

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "manifests",
		Username: "default",
		Password: "",
	}
}

// Store writes manifest batches and rows to ClickHouse.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

// NewStore opens a native-protocol connection.
func NewStore(cfg *Config) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse: connect: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the batch and row tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS manifest_batches (
			id               UUID,
			site_tag         LowCardinality(String),
			filename         String,
			auction_url      String,
			bid_price        Decimal(18, 2),
			shipping_fee     Decimal(18, 2),
			source_rows      UInt32,
			output_rows      UInt32,
			dropped_rows     UInt32,
			placeholder_rows UInt32,
			processed_at     DateTime,
			created_at       DateTime DEFAULT now()
		) ENGINE = MergeTree() ORDER BY (site_tag, processed_at, id)`,
		`CREATE TABLE IF NOT EXISTS manifest_rows (
			batch_id     UUID,
			position     UInt32,
			item_number  String,
			product_name String,
			qty          UInt32,
			unit_retail  Decimal(18, 2),
			created_at   DateTime DEFAULT now()
		) ENGINE = MergeTree() ORDER BY (batch_id, position)`,
	}
	for _, stmt := range stmts {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("clickhouse: ensure schema: %w", err)
		}
	}
	return nil
}

// InsertBatch writes one batch record plus all of its canonical rows.
func (s *Store) InsertBatch(ctx context.Context, batch *ManifestBatch, rows []schema.CanonicalRow) error {
	err := s.conn.Exec(ctx, `
		INSERT INTO manifest_batches (
			id, site_tag, filename, auction_url, bid_price, shipping_fee,
			source_rows, output_rows, dropped_rows, placeholder_rows,
			processed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.ID,
		batch.SiteTag,
		batch.Filename,
		batch.AuctionURL,
		batch.BidPrice,
		batch.ShippingFee,
		uint32(batch.SourceRows),
		uint32(batch.OutputRows),
		uint32(batch.DroppedRows),
		uint32(batch.PlaceholderRows),
		batch.ProcessedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("clickhouse: insert batch: %w", err)
	}

	prepared, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO manifest_rows (batch_id, position, item_number, product_name, qty, unit_retail, created_at)`)
	if err != nil {
		return fmt.Errorf("clickhouse: prepare row batch: %w", err)
	}
	now := time.Now()
	for i, row := range rows {
		if err := prepared.Append(
			batch.ID,
			uint32(i),
			row.ItemNumber,
			row.ProductName,
			uint32(row.Qty),
			row.UnitRetail,
			now,
		); err != nil {
			return fmt.Errorf("clickhouse: append row %d: %w", i, err)
		}
	}
	if err := prepared.Send(); err != nil {
		return fmt.Errorf("clickhouse: send row batch: %w", err)
	}
	return nil
}

// ListBatches returns the most recent batches for a site tag, newest first.
// An empty tag lists across all sites.
func (s *Store) ListBatches(ctx context.Context, siteTag string, limit int) ([]ManifestBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, site_tag, filename, auction_url, bid_price, shipping_fee,
		       source_rows, output_rows, dropped_rows, placeholder_rows,
		       processed_at, created_at
		FROM manifest_batches`
	args := []any{}
	if siteTag != "" {
		query += ` WHERE site_tag = ?`
		args = append(args, siteTag)
	}
	query += ` ORDER BY processed_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: list batches: %w", err)
	}
	defer rows.Close()

	var out []ManifestBatch
	for rows.Next() {
		var (
			b                                       ManifestBatch
			srcRows, outRows, dropped, placeholders uint32
		)
		if err := rows.Scan(
			&b.ID, &b.SiteTag, &b.Filename, &b.AuctionURL, &b.BidPrice, &b.ShippingFee,
			&srcRows, &outRows, &dropped, &placeholders,
			&b.ProcessedAt, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("clickhouse: scan batch: %w", err)
		}
		b.SourceRows = int(srcRows)
		b.OutputRows = int(outRows)
		b.DroppedRows = int(dropped)
		b.PlaceholderRows = int(placeholders)
		out = append(out, b)
	}
	return out, rows.Err()
}
