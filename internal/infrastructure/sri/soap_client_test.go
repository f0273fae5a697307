package sri_test

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laocorp/pos-facturacion/internal/infrastructure/sri"
	"github.com/laocorp/pos-facturacion/pkg/config"
	"github.com/laocorp/pos-facturacion/pkg/logger"
)

const respuestaRecibida = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:validarComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.recepcion">
      <RespuestaRecepcionComprobante>
        <estado>RECIBIDA</estado>
        <comprobantes/>
      </RespuestaRecepcionComprobante>
    </ns2:validarComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

const respuestaDevuelta = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:validarComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.recepcion">
      <RespuestaRecepcionComprobante>
        <estado>DEVUELTA</estado>
        <comprobantes>
          <comprobante>
            <claveAcceso>2911202401179001234400110010020000001233210000013</claveAcceso>
            <mensajes>
              <mensaje>
                <identificador>35</identificador>
                <mensaje>ARCHIVO NO CUMPLE ESTRUCTURA XML</mensaje>
                <informacionAdicional>detalle del error</informacionAdicional>
                <tipo>ERROR</tipo>
              </mensaje>
            </mensajes>
          </comprobante>
        </comprobantes>
      </RespuestaRecepcionComprobante>
    </ns2:validarComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

const respuestaAutorizado = `<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <ns2:autorizacionComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.autorizacion">
      <RespuestaAutorizacionComprobante>
        <claveAccesoConsultada>2911202401179001234400110010020000001233210000013</claveAccesoConsultada>
        <numeroComprobantes>1</numeroComprobantes>
        <autorizaciones>
          <autorizacion>
            <estado>AUTORIZADO</estado>
            <numeroAutorizacion>2911202414001790012344001123456789</numeroAutorizacion>
            <fechaAutorizacion>2024-11-29T14:05:00-05:00</fechaAutorizacion>
            <ambiente>PRUEBAS</ambiente>
            <mensajes/>
          </autorizacion>
        </autorizaciones>
      </RespuestaAutorizacionComprobante>
    </ns2:autorizacionComprobanteResponse>
  </soap:Body>
</soap:Envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *sri.SOAPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return sri.NewSOAPClient(config.SRIConfig{
		Ambiente:        "1",
		RecepcionURL:    srv.URL,
		AutorizacionURL: srv.URL,
	}, logger.Nop())
}

func TestSOAPClient_EnviarComprobante_Recibida(t *testing.T) {
	xmlFirmado := []byte("<factura id=\"comprobante\"></factura>")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		// El sobre lleva el comprobante en Base64 dentro de validarComprobante.
		assert.Contains(t, string(body), "validarComprobante")
		assert.Contains(t, string(body), base64.StdEncoding.EncodeToString(xmlFirmado))
		assert.Equal(t, "text/xml; charset=utf-8", r.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, respuestaRecibida)
	})

	resp, err := client.EnviarComprobante(context.Background(), xmlFirmado)
	require.NoError(t, err)
	assert.Equal(t, "RECIBIDA", resp.Estado)
	assert.True(t, resp.Recibida())
	assert.Empty(t, resp.Mensajes)
}

func TestSOAPClient_EnviarComprobante_Devuelta(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, respuestaDevuelta)
	})

	resp, err := client.EnviarComprobante(context.Background(), []byte("<factura></factura>"))
	require.NoError(t, err, "DEVUELTA es un veredicto, no un error de transporte")
	assert.Equal(t, "DEVUELTA", resp.Estado)
	assert.False(t, resp.Recibida())
	require.Len(t, resp.Mensajes, 1)
	assert.Equal(t, "35", resp.Mensajes[0].Identificador)
	assert.Equal(t, "ARCHIVO NO CUMPLE ESTRUCTURA XML", resp.Mensajes[0].Mensaje)
	assert.Equal(t, "ERROR", resp.Mensajes[0].Tipo)
}

func TestSOAPClient_ConsultarAutorizacion_Autorizado(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "<claveAccesoComprobante>2911202401179001234400110010020000001233210000013</claveAccesoComprobante>")
		_, _ = io.WriteString(w, respuestaAutorizado)
	})

	resp, err := client.ConsultarAutorizacion(context.Background(), "2911202401179001234400110010020000001233210000013")
	require.NoError(t, err)
	assert.True(t, resp.Autorizado())
	assert.Equal(t, "2911202414001790012344001123456789", resp.NumeroAutorizacion)
	require.NotNil(t, resp.FechaAutorizacion)
	assert.Equal(t, 2024, resp.FechaAutorizacion.Year())
}

func TestSOAPClient_ConsultarAutorizacion_SinAutorizaciones(t *testing.T) {
	const enProceso = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>
		<ns2:autorizacionComprobanteResponse xmlns:ns2="http://ec.gob.sri.ws.autorizacion">
		<RespuestaAutorizacionComprobante>
			<claveAccesoConsultada>123</claveAccesoConsultada>
			<numeroComprobantes>0</numeroComprobantes>
			<autorizaciones/>
		</RespuestaAutorizacionComprobante>
		</ns2:autorizacionComprobanteResponse></soap:Body></soap:Envelope>`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, enProceso)
	})

	resp, err := client.ConsultarAutorizacion(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, sri.EstadoEnProceso, resp.Estado)
	assert.False(t, resp.Autorizado())
}

func TestSOAPClient_ErrorHTTP(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.EnviarComprobante(context.Background(), []byte("<a></a>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestSOAPClient_Fault(t *testing.T) {
	const fault = `<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"><soap:Body>
		<soap:Fault><faultcode>soap:Server</faultcode><faultstring>Error interno</faultstring></soap:Fault>
	</soap:Body></soap:Envelope>`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, fault)
	})

	_, err := client.EnviarComprobante(context.Background(), []byte("<a></a>"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "Error interno"))
}

func TestSOAPClient_TransporteCaido(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // el endpoint ya no escucha

	client := sri.NewSOAPClient(config.SRIConfig{
		Ambiente:        "1",
		RecepcionURL:    srv.URL,
		AutorizacionURL: srv.URL,
	}, logger.Nop())

	_, err := client.EnviarComprobante(context.Background(), []byte("<a></a>"))
	assert.Error(t, err)
}
