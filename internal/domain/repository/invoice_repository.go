package repository

import (
	"context"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// ElectronicInvoiceRepository registros de intentos de emisión. Solo inserta y
// consulta: los registros son inmutables una vez escritos.
type ElectronicInvoiceRepository interface {
	Create(ctx context.Context, inv *entity.ElectronicInvoice) error
	GetByID(ctx context.Context, id string) (*entity.ElectronicInvoice, error)
	GetByClaveAcceso(ctx context.Context, clave string) (*entity.ElectronicInvoice, error)
	// ListBySaleID devuelve los intentos de la venta, del más reciente al más antiguo.
	ListBySaleID(ctx context.Context, saleID string) ([]*entity.ElectronicInvoice, error)
}
