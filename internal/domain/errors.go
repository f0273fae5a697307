package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrNoSequential       = errors.New("venta sin secuencial fiscal")
	ErrCertExpired        = errors.New("certificado de firma expirado")
	ErrCertPassword       = errors.New("contraseña del certificado incorrecta")
	ErrCertFormat         = errors.New("certificado con formato inválido")
	ErrNotRetryable       = errors.New("el comprobante ya tiene veredicto de la autoridad")
)
