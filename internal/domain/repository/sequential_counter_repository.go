package repository

import "context"

// SequentialCounterRepository asignación de números de documento sin huecos.
type SequentialCounterRepository interface {
	// Allocate devuelve el valor actual del contador para la clave dada y lo
	// incrementa atómicamente dentro de la transacción del caller. Dos
	// llamadas concurrentes sobre la misma clave nunca observan el mismo
	// valor. Retorna domain.ErrNoSequential si no existe fila de contador.
	Allocate(ctx context.Context, companyID, docType, estab, ptoEmi string) (int64, error)
}
