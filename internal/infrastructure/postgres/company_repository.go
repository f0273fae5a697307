package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo emisores sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

// GetByID obtiene un emisor por ID.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT id, ruc, razon_social, COALESCE(nombre_comercial, ''), dir_matriz, estab, pto_emi, obligado_contabilidad, COALESCE(cert_path, ''), COALESCE(cert_password, ''), created_at, updated_at
		FROM companies WHERE id = $1`
	var c entity.Company
	err := r.q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.RUC, &c.RazonSocial, &c.NombreComercial, &c.DirMatriz,
		&c.Estab, &c.PtoEmi, &c.ObligadoContabilidad, &c.CertPath, &c.CertPassword,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}
