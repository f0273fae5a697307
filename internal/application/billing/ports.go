// Package billing orquesta la emisión de comprobantes electrónicos: clave de
// acceso, XML, firma XAdES-BES, envío al SRI y ciclo de autorización.
package billing

import (
	"context"
	"time"

	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/internal/domain/repository"
	infrasri "github.com/laocorp/pos-facturacion/internal/infrastructure/sri"
)

// Signer firma el comprobante y empalma la firma en el documento.
type Signer interface {
	Sign(doc []byte, mat *infrasri.CertificateMaterial, signingTime time.Time) ([]byte, error)
}

// XMLBuilder serializa el contexto de venta al XML de factura.
type XMLBuilder interface {
	Build(ctx infrasri.FacturaContext) ([]byte, error)
}

// Submitter habla con los web services de recepción y autorización del SRI.
// nil en modo dev (no se envía nada).
type Submitter interface {
	EnviarComprobante(ctx context.Context, xmlFirmado []byte) (*infrasri.RespuestaRecepcion, error)
	ConsultarAutorizacion(ctx context.Context, claveAcceso string) (*infrasri.RespuestaAutorizacion, error)
}

// CertificateSource obtiene el material de firma del emisor (keystore PKCS#12
// ya decodificado). La custodia del archivo es externa al core.
type CertificateSource interface {
	Material(ctx context.Context, company *entity.Company) (*infrasri.CertificateMaterial, error)
}

// CounterTxRunner asigna un secuencial fresco en su propia transacción
// (re-emisión: el número original quedó quemado por el intento fallido).
type CounterTxRunner interface {
	RunCounter(ctx context.Context, fn func(counterRepo repository.SequentialCounterRepository) error) error
}
