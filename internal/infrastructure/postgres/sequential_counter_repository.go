package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

var _ repository.SequentialCounterRepository = (*SequentialCounterRepo)(nil)

// SequentialCounterRepo asignación de secuenciales sobre PostgreSQL. Debe
// usarse con una tx: el FOR UPDATE solo serializa dentro de la transacción
// que decide si la venta se confirma o se revierte.
type SequentialCounterRepo struct {
	q Querier
}

// NewSequentialCounterRepository construye el adaptador. Pasar la tx del caller.
func NewSequentialCounterRepository(q Querier) *SequentialCounterRepo {
	return &SequentialCounterRepo{q: q}
}

// Allocate devuelve el valor actual del contador y lo incrementa. La fila se
// bloquea con FOR UPDATE: la segunda venta concurrente espera y observa el
// valor ya incrementado. Sin fila de contador retorna domain.ErrNotFound.
func (r *SequentialCounterRepo) Allocate(ctx context.Context, companyID, docType, estab, ptoEmi string) (int64, error) {
	var id string
	var next int64
	err := r.q.QueryRow(ctx, `
		SELECT id, next_value FROM sequential_counters
		WHERE company_id = $1 AND doc_type = $2 AND estab = $3 AND pto_emi = $4
		FOR UPDATE`,
		companyID, docType, estab, ptoEmi,
	).Scan(&id, &next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: contador %s/%s/%s-%s", domain.ErrNoSequential, companyID, docType, estab, ptoEmi)
		}
		return 0, fmt.Errorf("lock sequential counter: %w", err)
	}

	_, err = r.q.Exec(ctx,
		`UPDATE sequential_counters SET next_value = next_value + 1, updated_at = now() WHERE id = $1`,
		id,
	)
	if err != nil {
		return 0, fmt.Errorf("advance sequential counter: %w", err)
	}
	return next, nil
}
