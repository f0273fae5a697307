package entity

import "time"

// Company emisor de comprobantes (tenant). Estab y PtoEmi identifican el
// establecimiento y punto de emisión autorizados (3 dígitos cada uno).
// CertPath/CertPassword apuntan al keystore PKCS#12 del emisor; el core solo
// valida su contenido, la custodia es externa.
type Company struct {
	ID                   string
	RUC                  string // 13 dígitos
	RazonSocial          string
	NombreComercial      string
	DirMatriz            string
	Estab                string // ej: "001"
	PtoEmi               string // ej: "001"
	ObligadoContabilidad bool
	CertPath             string
	CertPassword         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
