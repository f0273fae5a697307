// Carga del keystore PKCS#12 del emisor y material de firma derivado.

package sri

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/pkcs12"

	"github.com/laocorp/pos-facturacion/internal/domain"
	"github.com/laocorp/pos-facturacion/internal/domain/entity"
	"github.com/laocorp/pos-facturacion/pkg/config"
)

// CertificateMaterial material de firma derivado del .p12. Vive solo durante
// una operación de firma; nunca se cachea ni se persiste.
type CertificateMaterial struct {
	PrivateKey  *rsa.PrivateKey
	Certificate *x509.Certificate
	SubjectCN   string
	IssuerCN    string
	Serial      *big.Int
	NotBefore   time.Time
	NotAfter    time.Time
}

// NewCertificateMaterial deriva el material desde una llave y certificado ya
// parseados (también lo usan los tests para evitar fixtures .p12).
func NewCertificateMaterial(priv *rsa.PrivateKey, cert *x509.Certificate) *CertificateMaterial {
	return &CertificateMaterial{
		PrivateKey:  priv,
		Certificate: cert,
		SubjectCN:   cert.Subject.CommonName,
		IssuerCN:    cert.Issuer.CommonName,
		Serial:      cert.SerialNumber,
		NotBefore:   cert.NotBefore,
		NotAfter:    cert.NotAfter,
	}
}

// ParseP12 decodifica el keystore PKCS#12 y recupera exactamente un
// certificado con su llave privada RSA. Contraseña incorrecta retorna
// domain.ErrCertPassword; contenido sin par llave/certificado retorna
// domain.ErrCertFormat.
func ParseP12(data []byte, password string) (*CertificateMaterial, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: keystore vacío", domain.ErrCertFormat)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		if strings.Contains(err.Error(), "password") {
			return nil, fmt.Errorf("%w: %v", domain.ErrCertPassword, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCertFormat, err)
	}
	rsaKey, ok := priv.(*rsa.PrivateKey)
	if !ok || cert == nil {
		return nil, fmt.Errorf("%w: el keystore debe contener un certificado con llave privada RSA", domain.ErrCertFormat)
	}
	return NewCertificateMaterial(rsaKey, cert), nil
}

// Vigente indica si el certificado es temporalmente válido en el instante dado.
func (m *CertificateMaterial) Vigente(at time.Time) bool {
	return !at.Before(m.NotBefore) && !at.After(m.NotAfter)
}

// SerialDecimal serial del certificado en base 10 (el perfil de firma lo exige
// en IssuerSerial además de la forma cruda).
func (m *CertificateMaterial) SerialDecimal() string {
	return m.Serial.String()
}

// IssuerName nombre completo del emisor en formato RFC 2253.
func (m *CertificateMaterial) IssuerName() string {
	return m.Certificate.Issuer.String()
}

// CertDigestSHA1B64 digest SHA-1 del certificado DER, en Base64 (SigningCertificate).
func (m *CertificateMaterial) CertDigestSHA1B64() string {
	return DigestSHA1B64(m.Certificate.Raw)
}

// ── Fuente de certificados ────────────────────────────────────────────────────

// FileCertificateSource obtiene el .p12 de la empresa desde el filesystem,
// con la ruta/contraseña globales de configuración como respaldo. El core
// trata la custodia como externa: aquí solo se leen bytes.
type FileCertificateSource struct {
	cfg config.SRIConfig
}

// NewFileCertificateSource crea la fuente con el respaldo de configuración.
func NewFileCertificateSource(cfg config.SRIConfig) *FileCertificateSource {
	return &FileCertificateSource{cfg: cfg}
}

// Material carga el keystore de la empresa y devuelve el material de firma
// ya decodificado.
func (s *FileCertificateSource) Material(ctx context.Context, company *entity.Company) (*CertificateMaterial, error) {
	data, password, err := s.fetch(ctx, company)
	if err != nil {
		return nil, err
	}
	return ParseP12(data, password)
}

// fetch devuelve los bytes del keystore y su contraseña para la empresa.
func (s *FileCertificateSource) fetch(_ context.Context, company *entity.Company) ([]byte, string, error) {
	path, password := company.CertPath, company.CertPassword
	if path == "" {
		path, password = s.cfg.CertPath, s.cfg.CertPassword
	}
	if path == "" {
		return nil, "", fmt.Errorf("empresa %s sin certificado configurado", company.ID)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("leer keystore %s: %w", path, err)
	}
	return data, password, nil
}
