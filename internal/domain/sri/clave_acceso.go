// Package sri: generación de la clave de acceso de 49 dígitos según la Ficha
// Técnica de Comprobantes Electrónicos del SRI (esquema offline).
// Composición: fecha (8) + codDoc (2) + RUC (13) + ambiente (1) + serie (6) +
// secuencial (9) + código numérico (8) + tipo emisión (1) + verificador módulo 11 (1).

package sri

import (
	"fmt"
	"regexp"
	"time"
)

// ClaveParams contiene los datos de emisión en el orden exigido por el SRI.
type ClaveParams struct {
	FechaEmision time.Time
	CodDoc       string // "01" factura, etc.
	RUC          string // 13 dígitos
	Ambiente     string // "1" pruebas, "2" producción
	Estab        string // 3 dígitos
	PtoEmi       string // 3 dígitos
	Secuencial   string // 9 dígitos
	TipoEmision  string // "1" emisión normal
}

// ClaveAccesoService genera claves de acceso deterministas: los mismos datos
// de emisión producen siempre la misma clave, sin aleatoriedad.
type ClaveAccesoService struct{}

// NewClaveAccesoService crea el servicio.
func NewClaveAccesoService() *ClaveAccesoService {
	return &ClaveAccesoService{}
}

var soloDigitos = regexp.MustCompile(`^[0-9]+$`)

// Generate construye la clave de acceso de 49 dígitos y su verificador.
func (s *ClaveAccesoService) Generate(p *ClaveParams) (string, error) {
	if p == nil {
		return "", fmt.Errorf("sri: ClaveParams es obligatorio")
	}
	if p.FechaEmision.IsZero() {
		return "", fmt.Errorf("sri: FechaEmision es obligatoria")
	}
	if err := requireDigits("CodDoc", p.CodDoc, 2); err != nil {
		return "", err
	}
	if err := requireDigits("RUC", p.RUC, 13); err != nil {
		return "", err
	}
	if p.Ambiente != "1" && p.Ambiente != "2" {
		return "", fmt.Errorf("sri: Ambiente debe ser '1' o '2', se recibió %q", p.Ambiente)
	}
	if err := requireDigits("Estab", p.Estab, 3); err != nil {
		return "", err
	}
	if err := requireDigits("PtoEmi", p.PtoEmi, 3); err != nil {
		return "", err
	}
	if err := requireDigits("Secuencial", p.Secuencial, 9); err != nil {
		return "", err
	}
	tipoEmision := p.TipoEmision
	if tipoEmision == "" {
		tipoEmision = "1"
	}
	if err := requireDigits("TipoEmision", tipoEmision, 1); err != nil {
		return "", err
	}

	base := p.FechaEmision.Format("02012006") +
		p.CodDoc +
		p.RUC +
		p.Ambiente +
		p.Estab + p.PtoEmi +
		p.Secuencial +
		numericCode(p.Secuencial) +
		tipoEmision

	return base + string(Mod11CheckDigit(base)), nil
}

// numericCode deriva el código numérico de 8 dígitos del secuencial (invertido,
// truncado a 8). La ficha técnica lo deja a criterio del emisor; derivarlo de
// los datos de emisión mantiene la clave recomputable e idempotente.
func numericCode(secuencial string) string {
	b := []byte(secuencial)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b[:8])
}

// Mod11CheckDigit calcula el dígito verificador módulo 11 del SRI: pesos
// 2,3,4,5,6,7 cíclicos desde el dígito más a la derecha; 11-residuo, con
// 11 → 0 y 10 → 1.
func Mod11CheckDigit(digits string) byte {
	weight := 2
	var sum int
	for i := len(digits) - 1; i >= 0; i-- {
		sum += int(digits[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	dv := 11 - sum%11
	switch dv {
	case 11:
		dv = 0
	case 10:
		dv = 1
	}
	return byte('0' + dv)
}

func requireDigits(field, value string, length int) error {
	if len(value) != length || !soloDigitos.MatchString(value) {
		return fmt.Errorf("sri: %s debe tener %d dígitos, se recibió %q", field, length, value)
	}
	return nil
}
