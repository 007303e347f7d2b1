package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/retailops/smartchain/decision/contract"
)

// Config configures the Postgres-backed sales repository.
type Config struct {
	DSN string `split_words:"true" required:"true"`
}

type skuRow struct {
	bun.BaseModel `bun:"table:skus"`

	ID           string  `bun:"id,pk"`
	Name         string  `bun:"name"`
	CurrentStock int     `bun:"current_stock"`
	CurrentPrice float64 `bun:"current_price"`
	DaysOnHand   int     `bun:"days_on_hand"`
	SellThrough  float64 `bun:"sell_through"`
}

type saleRow struct {
	bun.BaseModel `bun:"table:sales"`

	ID       int64     `bun:"id,pk,autoincrement"`
	SKUID    string    `bun:"sku_id"`
	SoldOn   time.Time `bun:"sold_on"`
	Quantity int       `bun:"quantity"`
}

// Store is the read-only sales repository over Postgres.
type Store struct {
	db *bun.DB
}

var _ contractx.Repository = (*Store)(nil)

func New(cfg Config) (*Store, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("database dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return NewWithDB(bun.NewDB(sqldb, pgdialect.New())), nil
}

func MustNew(cfg Config) *Store {
	s, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithDB wraps an existing bun handle. Useful for tests and migrations.
func NewWithDB(db *bun.DB) *Store {
	return &Store{db: db}
}

// SKU returns the SKU with the given id, or (nil, nil) when absent.
func (s *Store) SKU(ctx context.Context, id string) (*contractx.SKU, error) {
	row := new(skuRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: select sku %s: %v", contractx.ErrRepository, id, err)
	}
	sku := toSKU(*row)
	return &sku, nil
}

// SaleQuantities returns the quantities sold for a SKU on or after since.
func (s *Store) SaleQuantities(ctx context.Context, skuID string, since time.Time) ([]int, error) {
	var quantities []int
	err := s.db.NewSelect().
		Model((*saleRow)(nil)).
		Column("quantity").
		Where("sku_id = ?", skuID).
		Where("sold_on >= ?", since).
		Scan(ctx, &quantities)
	if err != nil {
		return nil, fmt.Errorf("%w: select sales for sku %s: %v", contractx.ErrRepository, skuID, err)
	}
	return quantities, nil
}

// LiquidationCandidates returns every SKU over the days-on-hand threshold or
// under the sell-through floor. Union semantics: either condition qualifies.
func (s *Store) LiquidationCandidates(ctx context.Context, daysOnHand int, sellThrough float64) ([]contractx.SKU, error) {
	var rows []skuRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("days_on_hand > ?", daysOnHand).
		WhereOr("sell_through < ?", sellThrough).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: select liquidation candidates: %v", contractx.ErrRepository, err)
	}

	skus := make([]contractx.SKU, 0, len(rows))
	for _, row := range rows {
		skus = append(skus, toSKU(row))
	}
	return skus, nil
}

func toSKU(row skuRow) contractx.SKU {
	return contractx.SKU{
		ID:           row.ID,
		Name:         row.Name,
		CurrentStock: row.CurrentStock,
		CurrentPrice: row.CurrentPrice,
		DaysOnHand:   row.DaysOnHand,
		SellThrough:  row.SellThrough,
	}
}
