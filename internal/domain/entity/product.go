package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto vendible con stock propio.
// Stock solo se decrementa dentro de la transacción de venta, nunca por el
// pipeline de firma/envío.
type Product struct {
	ID              string
	CompanyID       string
	CodigoPrincipal string // SKU / código principal en el detalle de la factura
	Name            string
	Description     string
	Price           decimal.Decimal
	TaxRate         decimal.Decimal // tarifa IVA: 0, 0.12, 0.15
	Stock           decimal.Decimal // nunca negativo
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
