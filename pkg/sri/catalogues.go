// Package sri contiene catálogos y validaciones alineados a la Ficha Técnica
// de Comprobantes Electrónicos del SRI (Ecuador), esquema offline v2.x.
package sri

// =============================================================================
// Tabla 3 - Tipos de comprobante (codDoc)
// =============================================================================

const (
	DocFactura              = "01" // Factura
	DocNotaCredito          = "04" // Nota de crédito
	DocNotaDebito           = "05" // Nota de débito
	DocGuiaRemision         = "06" // Guía de remisión
	DocComprobanteRetencion = "07" // Comprobante de retención
)

// ValidDocumentTypeCodes tipos de comprobante soportados por el esquema offline.
var ValidDocumentTypeCodes = map[string]bool{
	DocFactura: true, DocNotaCredito: true, DocNotaDebito: true,
	DocGuiaRemision: true, DocComprobanteRetencion: true,
}

// =============================================================================
// Tabla 4 - Ambiente y Tabla 2 - Tipo de emisión
// =============================================================================

const (
	AmbientePruebas    = "1" // celcer.sri.gob.ec
	AmbienteProduccion = "2" // cel.sri.gob.ec

	EmisionNormal = "1" // Única forma de emisión vigente en el esquema offline
)

// =============================================================================
// Tabla 24 - Formas de pago
// =============================================================================

const (
	PagoSinSistemaFinanciero = "01" // Efectivo / sin utilización del sistema financiero
	PagoCompensacionDeudas   = "15" // Compensación de deudas
	PagoDebitoCuenta         = "16" // Débito de cuenta
	PagoDineroElectronico    = "17" // Dinero electrónico
	PagoTarjetaPrepago       = "18" // Tarjeta prepago
	PagoTarjetaCredito       = "19" // Tarjeta de crédito
	PagoOtros                = "20" // Otros con utilización del sistema financiero
	PagoEndosoTitulos        = "21" // Endoso de títulos
)

// ValidPaymentMethodCodes formas de pago aceptadas en <pagos>.
var ValidPaymentMethodCodes = map[string]bool{
	PagoSinSistemaFinanciero: true, PagoCompensacionDeudas: true,
	PagoDebitoCuenta: true, PagoDineroElectronico: true,
	PagoTarjetaPrepago: true, PagoTarjetaCredito: true,
	PagoOtros: true, PagoEndosoTitulos: true,
}

// =============================================================================
// Tabla 6 - Tipo de identificación del comprador
// =============================================================================

const (
	IdentRUC             = "04" // RUC
	IdentCedula          = "05" // Cédula
	IdentPasaporte       = "06" // Pasaporte
	IdentConsumidorFinal = "07" // Venta a consumidor final
	IdentExterior        = "08" // Identificación del exterior
)

// ConsumidorFinalID identificación genérica para ventas a consumidor final.
const ConsumidorFinalID = "9999999999999"

// ConsumidorFinalNombre razón social genérica para ventas a consumidor final.
const ConsumidorFinalNombre = "CONSUMIDOR FINAL"

// IdentificationTypeCodeFor deduce el código de tipo de identificación a
// partir del número: 13 dígitos = RUC, 10 dígitos = cédula, otro = pasaporte.
func IdentificationTypeCodeFor(id string) string {
	digits := extractDigits(id)
	switch {
	case id == ConsumidorFinalID:
		return IdentConsumidorFinal
	case len(digits) == 13 && len(digits) == len(id):
		return IdentRUC
	case len(digits) == 10 && len(digits) == len(id):
		return IdentCedula
	default:
		return IdentPasaporte
	}
}

// =============================================================================
// Tabla 16/17 - IVA (codigo 2 en totalConImpuestos / impuestos de detalle)
// =============================================================================

const (
	ImpuestoIVA = "2" // Código de impuesto IVA

	TarifaIVA0  = "0" // 0%
	TarifaIVA12 = "2" // 12%
	TarifaIVA15 = "4" // 15%
)
