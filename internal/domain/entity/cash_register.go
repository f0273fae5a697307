package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de caja y tipos de movimiento. Los movimientos nunca se modifican
// ni se borran; las anulaciones crean asientos inversos.
const (
	CashRegisterOpen   = "ABIERTA"
	CashRegisterClosed = "CERRADA"

	CashMovementIncome  = "INGRESO"
	CashMovementExpense = "EGRESO"
)

// CashRegister sesión de caja de una empresa. A lo sumo una ABIERTA por empresa.
type CashRegister struct {
	ID            string
	CompanyID     string
	Status        string
	OpeningAmount decimal.Decimal
	OpenedAt      time.Time
	ClosedAt      *time.Time
}

// CashMovement asiento inmutable del libro de caja; se crea una vez por venta
// exitosa cuando existe una caja abierta.
type CashMovement struct {
	ID             string
	CashRegisterID string
	Type           string
	Amount         decimal.Decimal
	Description    string
	SaleID         string // referencia a la venta que originó el asiento
	CreatedAt      time.Time
}
