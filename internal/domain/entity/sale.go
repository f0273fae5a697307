package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de una venta. La venta es inmutable una vez
// COMPLETADA salvo por la referencia al comprobante emitido.
const (
	SaleStatusCompleted = "COMPLETADA"
	SaleStatusCancelled = "ANULADA"
)

// Sale representa una venta de punto de venta finalizada.
// Secuencial es el número de documento asignado dentro de la transacción de
// venta; si Sequential es false el número es sintético (no hubo contador
// configurado) y la venta no puede facturarse sin remediación del operador.
type Sale struct {
	ID            string
	CompanyID     string
	CustomerID    string // vacío = consumidor final
	Secuencial    string // 9 dígitos, o sintético con prefijo "T"
	Sequential    bool
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string // código Tabla 24 SRI
	Status        string
	InvoiceID     string // referencia al último comprobante emitido (adjunta tras la emisión)
	CreatedAt     time.Time

	Items []*SaleItem
}

// SaleItem línea de venta; pertenece exclusivamente a una Sale.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}
