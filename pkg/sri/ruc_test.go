package sri_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laocorp/pos-facturacion/pkg/sri"
)

// RUC público real del propio SRI (tercer dígito 6, verificador en posición 9).
const rucSRIPublico = "1760013560001"

func TestValidateRUC_EntidadPublica(t *testing.T) {
	require.NoError(t, sri.ValidateRUC(rucSRIPublico),
		"el RUC del SRI debe validar como entidad pública")
}

func TestValidateRUC_SociedadPrivada(t *testing.T) {
	// Construido con los pesos 4,3,2,7,6,5,4,3,2: suma 73, verificador 4.
	assert.NoError(t, sri.ValidateRUC("1790012344001"))
}

func TestValidateRUC_PersonaNatural(t *testing.T) {
	// Cédula con módulo 10 válido + establecimiento 001.
	assert.NoError(t, sri.ValidateRUC("1710392422001"))
}

func TestValidateRUC_VerificadorIncorrecto(t *testing.T) {
	assert.Error(t, sri.ValidateRUC("1790012345001"),
		"un verificador alterado debe rechazarse")
}

func TestValidateRUC_LongitudIncorrecta(t *testing.T) {
	assert.Error(t, sri.ValidateRUC("179001234"))
	assert.Error(t, sri.ValidateRUC(""))
	assert.Error(t, sri.ValidateRUC("17900123440011"))
}

func TestValidateRUC_EstablecimientoCero(t *testing.T) {
	assert.Error(t, sri.ValidateRUC("1790012344000"),
		"el sufijo 000 no es un establecimiento válido")
}

func TestValidateCedula(t *testing.T) {
	assert.NoError(t, sri.ValidateCedula("1710392422"))
	assert.Error(t, sri.ValidateCedula("1710392423"), "verificador alterado")
	assert.Error(t, sri.ValidateCedula("171039242"), "longitud incorrecta")
}

func TestIdentificationTypeCodeFor(t *testing.T) {
	assert.Equal(t, sri.IdentConsumidorFinal, sri.IdentificationTypeCodeFor(sri.ConsumidorFinalID))
	assert.Equal(t, sri.IdentRUC, sri.IdentificationTypeCodeFor("1790012344001"))
	assert.Equal(t, sri.IdentCedula, sri.IdentificationTypeCodeFor("1710392422"))
	assert.Equal(t, sri.IdentPasaporte, sri.IdentificationTypeCodeFor("AB123456"))
}
