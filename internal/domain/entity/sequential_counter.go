package entity

import "time"

// SequentialCounter contador monotónico por (empresa, tipo de documento,
// establecimiento, punto de emisión). Es el único contador mutable compartido:
// toda asignación se serializa con SELECT ... FOR UPDATE dentro de la
// transacción del caller para que nunca se repita ni se salte un número.
type SequentialCounter struct {
	ID        string
	CompanyID string
	DocType   string // codDoc SRI, ej: "01"
	Estab     string
	PtoEmi    string
	NextValue int64
	UpdatedAt time.Time
}
