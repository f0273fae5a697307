package entity

import "time"

// Customer cliente de la empresa. TaxID es RUC, cédula o pasaporte; el tipo
// se deduce con el catálogo SRI al construir el comprobante.
type Customer struct {
	ID        string
	CompanyID string
	Name      string
	TaxID     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
