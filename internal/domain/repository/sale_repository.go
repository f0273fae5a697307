package repository

import (
	"context"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// SaleRepository persistencia de ventas y sus líneas.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetItemsBySaleID(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	// AttachInvoice adjunta la referencia al comprobante emitido; es la única
	// mutación permitida sobre una venta completada.
	AttachInvoice(ctx context.Context, saleID, invoiceID string) error
}
