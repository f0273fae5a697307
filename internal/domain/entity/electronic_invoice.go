package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de emisión del comprobante electrónico (SRI Ecuador).
//
//	GENERADA → FIRMADA → RECIBIDA → AUTORIZADA           (flujo exitoso)
//	                   ↘ DEVUELTA                        (recepción rechaza, terminal)
//	                              ↘ NO_AUTORIZADA        (autorización niega, terminal)
//	                              ↘ RECHAZADA            (veredicto no reconocido, terminal)
//	cualquier paso     → ERROR_ENVIO                     (fallo local/red, re-emitible)
const (
	EstadoGenerada     = "GENERADA"
	EstadoFirmada      = "FIRMADA"
	EstadoRecibida     = "RECIBIDA"
	EstadoDevuelta     = "DEVUELTA"
	EstadoAutorizada   = "AUTORIZADA"
	EstadoNoAutorizada = "NO_AUTORIZADA"
	EstadoRechazada    = "RECHAZADA"
	EstadoErrorEnvio   = "ERROR_ENVIO"
)

// ElectronicInvoice registro de auditoría de un intento de emisión. Se crea
// exactamente una vez por intento, nunca se borra; un intento fallido también
// queda registrado con su estado terminal. BuyerName/BuyerTaxID son una foto
// al momento de la emisión, no una referencia viva al cliente.
type ElectronicInvoice struct {
	ID                 string
	CompanyID          string
	SaleID             string
	CodDoc             string // tipo de comprobante, ej: "01" factura
	Secuencial         string // 9 dígitos del intento (puede diferir del de la venta al re-emitir)
	ClaveAcceso        string // 49 dígitos, determinista, única
	NumeroAutorizacion string // vacío hasta AUTORIZADA
	FechaAutorizacion  *time.Time
	Estado             string
	BuyerName          string
	BuyerTaxID         string
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal
	XMLFirmado         string // comprobante firmado completo, para auditoría y reproceso
	Ambiente           string // "1" pruebas, "2" producción
	Mensajes           string // mensajes estructurados de la autoridad (JSON)
	CreatedAt          time.Time
}

// Retryable indica si el intento puede repetirse: solo ERROR_ENVIO (la
// autoridad nunca llegó a emitir veredicto sobre esta clave de acceso).
func (e *ElectronicInvoice) Retryable() bool {
	return e.Estado == EstadoErrorEnvio
}

// Terminal indica si el estado es final del ciclo de emisión.
func (e *ElectronicInvoice) Terminal() bool {
	switch e.Estado {
	case EstadoAutorizada, EstadoDevuelta, EstadoNoAutorizada, EstadoRechazada, EstadoErrorEnvio:
		return true
	}
	return false
}
