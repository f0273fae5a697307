// Tipos de respuesta de los web services de recepción y autorización del SRI.

package sri

import "time"

// Estados que devuelven los web services.
const (
	EstadoRecibida     = "RECIBIDA"
	EstadoDevuelta     = "DEVUELTA"
	EstadoAutorizado   = "AUTORIZADO"
	EstadoNoAutorizado = "NO AUTORIZADO"
	EstadoRechazado    = "RECHAZADA"
	EstadoEnProceso    = "EN PROCESO"
)

// Mensaje detalle devuelto por el SRI junto al veredicto (código de error,
// texto y detalle adicional).
type Mensaje struct {
	Identificador        string `json:"identificador"`
	Mensaje              string `json:"mensaje"`
	InformacionAdicional string `json:"informacionAdicional,omitempty"`
	Tipo                 string `json:"tipo,omitempty"`
}

// RespuestaRecepcion resultado de validarComprobante.
type RespuestaRecepcion struct {
	Estado   string
	Mensajes []Mensaje
}

// Recibida indica si el comprobante pasó la validación de entrada.
func (r *RespuestaRecepcion) Recibida() bool {
	return r.Estado == EstadoRecibida
}

// RespuestaAutorizacion resultado de autorizacionComprobante para una clave
// de acceso.
type RespuestaAutorizacion struct {
	Estado             string
	NumeroAutorizacion string
	FechaAutorizacion  *time.Time
	Mensajes           []Mensaje
}

// Autorizado indica si el SRI emitió número de autorización.
func (r *RespuestaAutorizacion) Autorizado() bool {
	return r.Estado == EstadoAutorizado
}
