package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

var _ repository.CashRegisterRepository = (*CashRegisterRepo)(nil)

// CashRegisterRepo cajas y libro de movimientos sobre PostgreSQL.
type CashRegisterRepo struct {
	q Querier
}

// NewCashRegisterRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCashRegisterRepository(q Querier) *CashRegisterRepo {
	return &CashRegisterRepo{q: q}
}

// GetOpenByCompany devuelve la caja ABIERTA de la empresa, o nil, nil si no
// hay ninguna.
func (r *CashRegisterRepo) GetOpenByCompany(ctx context.Context, companyID string) (*entity.CashRegister, error) {
	query := `
		SELECT id, company_id, status, opening_amount, opened_at, closed_at
		FROM cash_registers WHERE company_id = $1 AND status = $2`
	var c entity.CashRegister
	err := r.q.QueryRow(ctx, query, companyID, entity.CashRegisterOpen).Scan(
		&c.ID, &c.CompanyID, &c.Status, &c.OpeningAmount, &c.OpenedAt, &c.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open cash register: %w", err)
	}
	return &c, nil
}

// CreateMovement inserta un asiento del libro de caja. Los asientos son
// inmutables: no hay Update ni Delete.
func (r *CashRegisterRepo) CreateMovement(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, cash_register_id, type, amount, description, sale_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CashRegisterID, m.Type, m.Amount, m.Description, nullIfEmpty(m.SaleID), m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}
