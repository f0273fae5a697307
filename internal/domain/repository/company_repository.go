package repository

import (
	"context"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// CompanyRepository emisores (tenants).
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Company, error)
}
