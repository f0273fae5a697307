package repository

import (
	"context"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// CashRegisterRepository cajas y libro de movimientos.
type CashRegisterRepository interface {
	// GetOpenByCompany devuelve la caja ABIERTA de la empresa, o nil, nil si
	// no hay ninguna (no es un error: la venta se registra igual).
	GetOpenByCompany(ctx context.Context, companyID string) (*entity.CashRegister, error)
	CreateMovement(ctx context.Context, m *entity.CashMovement) error
}
