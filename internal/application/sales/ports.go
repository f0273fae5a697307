// Package sales contiene el caso de uso de registro de ventas de punto de venta.
package sales

import (
	"context"

	"github.com/laocorp/pos-facturacion/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repos que
// participan en una venta. Si fn retorna error, nada queda persistido.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		saleRepo repository.SaleRepository,
		productRepo repository.ProductRepository,
		counterRepo repository.SequentialCounterRepository,
		cashRepo repository.CashRegisterRepository,
	) error) error
}
