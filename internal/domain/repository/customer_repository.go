package repository

import (
	"context"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// CustomerRepository clientes.
type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
}
