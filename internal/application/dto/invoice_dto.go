package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
)

// MensajeAutoridad mensaje estructurado devuelto por el SRI.
type MensajeAutoridad struct {
	Identificador        string `json:"identificador"`
	Mensaje              string `json:"mensaje"`
	InformacionAdicional string `json:"informacionAdicional,omitempty"`
	Tipo                 string `json:"tipo,omitempty"`
}

// InvoiceResponse representación de un intento de emisión.
type InvoiceResponse struct {
	ID                 string             `json:"id"`
	SaleID             string             `json:"sale_id"`
	CodDoc             string             `json:"cod_doc"`
	Secuencial         string             `json:"secuencial"`
	ClaveAcceso        string             `json:"clave_acceso"`
	NumeroAutorizacion string             `json:"numero_autorizacion,omitempty"`
	FechaAutorizacion  *time.Time         `json:"fecha_autorizacion,omitempty"`
	Estado             string             `json:"estado"`
	BuyerName          string             `json:"buyer_name"`
	BuyerTaxID         string             `json:"buyer_tax_id"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	Tax                decimal.Decimal    `json:"tax"`
	Total              decimal.Decimal    `json:"total"`
	Ambiente           string             `json:"ambiente"`
	Mensajes           []MensajeAutoridad `json:"mensajes,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// FromElectronicInvoice convierte la entidad al contrato de respuesta. El XML
// firmado no se expone por este DTO (puede pesar cientos de KB).
func FromElectronicInvoice(inv *entity.ElectronicInvoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                 inv.ID,
		SaleID:             inv.SaleID,
		CodDoc:             inv.CodDoc,
		Secuencial:         inv.Secuencial,
		ClaveAcceso:        inv.ClaveAcceso,
		NumeroAutorizacion: inv.NumeroAutorizacion,
		FechaAutorizacion:  inv.FechaAutorizacion,
		Estado:             inv.Estado,
		BuyerName:          inv.BuyerName,
		BuyerTaxID:         inv.BuyerTaxID,
		Subtotal:           inv.Subtotal,
		Tax:                inv.Tax,
		Total:              inv.Total,
		Ambiente:           inv.Ambiente,
		CreatedAt:          inv.CreatedAt,
	}
	if inv.Mensajes != "" {
		// Mensajes se guarda como JSON; si no decodifica se omite sin fallar.
		_ = json.Unmarshal([]byte(inv.Mensajes), &resp.Mensajes)
	}
	return resp
}
