package sri

import (
	"fmt"
	"unicode"
)

// Pesos módulo 11 para RUC de sociedades privadas (tercer dígito 9).
// Se aplican a los 9 primeros dígitos; el décimo es el verificador.
var sociedadWeights = [9]int{4, 3, 2, 7, 6, 5, 4, 3, 2}

// Pesos módulo 11 para RUC de entidades públicas (tercer dígito 6).
// Se aplican a los 8 primeros dígitos; el noveno es el verificador.
var publicaWeights = [8]int{3, 2, 7, 6, 5, 4, 3, 2}

// ValidateRUC valida un RUC ecuatoriano de 13 dígitos según el tercer dígito:
// persona natural (0-5, algoritmo de cédula), entidad pública (6) o sociedad
// privada (9). El sufijo debe ser un código de establecimiento distinto de 000.
func ValidateRUC(ruc string) error {
	digits := extractDigits(ruc)
	if len(digits) != 13 || len(digits) != len(ruc) {
		return fmt.Errorf("sri: RUC debe tener exactamente 13 dígitos, se recibieron %d", len(digits))
	}
	if digits[10:] == "000" {
		return fmt.Errorf("sri: el código de establecimiento del RUC no puede ser 000")
	}
	province := (int(digits[0]-'0') * 10) + int(digits[1]-'0')
	if province < 1 || province > 24 && province != 30 {
		return fmt.Errorf("sri: código de provincia del RUC inválido: %02d", province)
	}

	switch third := digits[2]; {
	case third <= '5':
		return validateCedulaDigits(digits[:10])
	case third == '6':
		return validateMod11(digits, publicaWeights[:], 8)
	case third == '9':
		return validateMod11(digits, sociedadWeights[:], 9)
	default:
		return fmt.Errorf("sri: tercer dígito del RUC inválido: %c", third)
	}
}

// ValidateCedula valida una cédula ecuatoriana de 10 dígitos (módulo 10).
func ValidateCedula(cedula string) error {
	digits := extractDigits(cedula)
	if len(digits) != 10 || len(digits) != len(cedula) {
		return fmt.Errorf("sri: cédula debe tener exactamente 10 dígitos, se recibieron %d", len(digits))
	}
	if digits[2] > '5' {
		return fmt.Errorf("sri: tercer dígito de cédula inválido: %c", digits[2])
	}
	return validateCedulaDigits(digits)
}

// validateCedulaDigits aplica el módulo 10 con coeficientes 2,1,2,1... sobre
// los 9 primeros dígitos; los productos mayores a 9 restan 9.
func validateCedulaDigits(digits string) error {
	var sum int
	for i := 0; i < 9; i++ {
		d := int(digits[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	expected := (10 - sum%10) % 10
	if got := int(digits[9] - '0'); got != expected {
		return fmt.Errorf("sri: dígito verificador de cédula inválido: esperado %d, recibido %d", expected, got)
	}
	return nil
}

// validateMod11 valida el dígito en la posición checkPos con los pesos dados.
// Residuo 0 implica verificador 0; residuo 1 invalida el número.
func validateMod11(digits string, weights []int, checkPos int) error {
	var sum int
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	remainder := sum % 11
	var expected int
	switch remainder {
	case 0:
		expected = 0
	case 1:
		return fmt.Errorf("sri: RUC con residuo 1, número inválido")
	default:
		expected = 11 - remainder
	}
	if got := int(digits[checkPos] - '0'); got != expected {
		return fmt.Errorf("sri: dígito verificador del RUC inválido: esperado %d, recibido %d", expected, got)
	}
	return nil
}

func extractDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, r)
		}
	}
	return string(out)
}
