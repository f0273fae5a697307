package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// ProductRepository persistencia de productos y su stock.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila del producto (SELECT FOR UPDATE) para
	// serializar decrementos de stock bajo ventas concurrentes.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
}
