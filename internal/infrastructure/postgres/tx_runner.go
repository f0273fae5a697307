package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laocorp/pos-facturacion/internal/application/billing"
	"github.com/laocorp/pos-facturacion/internal/application/sales"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

// Ensure TxRunner implements sales.TxRunner and billing.CounterTxRunner.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ billing.CounterTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale inicia una transacción con los repos que participan en una venta
// (venta, productos, contador de secuenciales, caja) y hace Commit o Rollback.
// Si fn retorna error no queda persistido nada: ni venta, ni líneas, ni
// decrementos de stock, ni el avance del contador.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	counterRepo repository.SequentialCounterRepository,
	cashRepo repository.CashRegisterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	saleRepo := NewSaleRepository(tx)
	productRepo := NewProductRepository(tx)
	counterRepo := NewSequentialCounterRepository(tx)
	cashRepo := NewCashRegisterRepository(tx)

	if err := fn(saleRepo, productRepo, counterRepo, cashRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunCounter inicia una transacción solo con el contador de secuenciales
// (re-emisión: el nuevo número se asigna fuera de la transacción de venta).
func (r *TxRunner) RunCounter(ctx context.Context, fn func(
	counterRepo repository.SequentialCounterRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewSequentialCounterRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
