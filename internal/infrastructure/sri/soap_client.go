// Cliente SOAP de los web services de recepción y autorización del SRI
// (esquema offline). Los sobres de request se construyen como texto; las
// respuestas se decodifican con encoding/xml por nombre local, que es
// indiferente al prefijo de namespace que use el servidor.

package sri

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/laocorp/pos-facturacion/pkg/config"
	"github.com/laocorp/pos-facturacion/pkg/logger"
)

// Endpoints oficiales por ambiente.
const (
	RecepcionURLPruebas       = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"
	AutorizacionURLPruebas    = "https://celcer.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"
	RecepcionURLProduccion    = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/RecepcionComprobantesOffline"
	AutorizacionURLProduccion = "https://cel.sri.gob.ec/comprobantes-electronicos-ws/AutorizacionComprobantesOffline"
)

const maxResponseBytes = 1 << 20 // las respuestas del SRI caben de sobra en 1MB

// SOAPClient habla con los dos web services del SRI.
type SOAPClient struct {
	httpClient      *http.Client
	recepcionURL    string
	autorizacionURL string
	log             *logger.Logger
}

// NewSOAPClient crea el cliente con los endpoints oficiales del ambiente
// configurado, salvo override explícito en la configuración.
func NewSOAPClient(cfg config.SRIConfig, log *logger.Logger) *SOAPClient {
	recepcion, autorizacion := RecepcionURLPruebas, AutorizacionURLPruebas
	if cfg.Ambiente == "2" {
		recepcion, autorizacion = RecepcionURLProduccion, AutorizacionURLProduccion
	}
	if cfg.RecepcionURL != "" {
		recepcion = cfg.RecepcionURL
	}
	if cfg.AutorizacionURL != "" {
		autorizacion = cfg.AutorizacionURL
	}
	return &SOAPClient{
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		recepcionURL:    recepcion,
		autorizacionURL: autorizacion,
		log:             log.Component("sri_soap"),
	}
}

// EnviarComprobante envía el XML firmado (Base64) a validarComprobante y
// devuelve el veredicto de recepción. Un error aquí es de transporte o de
// decodificación; los rechazos del SRI llegan como estado DEVUELTA.
func (c *SOAPClient) EnviarComprobante(ctx context.Context, xmlFirmado []byte) (*RespuestaRecepcion, error) {
	var sb strings.Builder
	sb.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ec="http://ec.gob.sri.ws.recepcion">`)
	sb.WriteString(`<soapenv:Header/><soapenv:Body><ec:validarComprobante><xml>`)
	sb.WriteString(base64.StdEncoding.EncodeToString(xmlFirmado))
	sb.WriteString(`</xml></ec:validarComprobante></soapenv:Body></soapenv:Envelope>`)

	body, err := c.post(ctx, c.recepcionURL, sb.String())
	if err != nil {
		return nil, err
	}

	var env recepcionEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("sri: decodificar respuesta de recepción: %w", err)
	}
	if env.Fault.String != "" {
		return nil, fmt.Errorf("sri: fault de recepción: %s", env.Fault.String)
	}

	resp := &RespuestaRecepcion{Estado: env.Respuesta.Estado}
	for _, comp := range env.Respuesta.Comprobantes {
		for _, m := range comp.Mensajes {
			resp.Mensajes = append(resp.Mensajes, m.toDomain())
		}
	}
	c.log.Debug().Str("estado", resp.Estado).Int("mensajes", len(resp.Mensajes)).Msg("recepción consultada")
	return resp, nil
}

// ConsultarAutorizacion consulta autorizacionComprobante para la clave de
// acceso. Si el SRI aún no registra autorizaciones, el estado es EN PROCESO.
func (c *SOAPClient) ConsultarAutorizacion(ctx context.Context, claveAcceso string) (*RespuestaAutorizacion, error) {
	var sb strings.Builder
	sb.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ec="http://ec.gob.sri.ws.autorizacion">`)
	sb.WriteString(`<soapenv:Header/><soapenv:Body><ec:autorizacionComprobante><claveAccesoComprobante>`)
	sb.WriteString(claveAcceso)
	sb.WriteString(`</claveAccesoComprobante></ec:autorizacionComprobante></soapenv:Body></soapenv:Envelope>`)

	body, err := c.post(ctx, c.autorizacionURL, sb.String())
	if err != nil {
		return nil, err
	}

	var env autorizacionEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("sri: decodificar respuesta de autorización: %w", err)
	}
	if env.Fault.String != "" {
		return nil, fmt.Errorf("sri: fault de autorización: %s", env.Fault.String)
	}

	if len(env.Respuesta.Autorizaciones) == 0 {
		return &RespuestaAutorizacion{Estado: EstadoEnProceso}, nil
	}

	aut := env.Respuesta.Autorizaciones[0]
	resp := &RespuestaAutorizacion{
		Estado:             aut.Estado,
		NumeroAutorizacion: aut.NumeroAutorizacion,
	}
	if aut.FechaAutorizacion != "" {
		if t, perr := parseFechaAutorizacion(aut.FechaAutorizacion); perr == nil {
			resp.FechaAutorizacion = &t
		}
	}
	for _, m := range aut.Mensajes {
		resp.Mensajes = append(resp.Mensajes, m.toDomain())
	}
	c.log.Debug().Str("estado", resp.Estado).Str("clave_acceso", claveAcceso).Msg("autorización consultada")
	return resp, nil
}

func (c *SOAPClient) post(ctx context.Context, url, envelope string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(envelope))
	if err != nil {
		return nil, fmt.Errorf("sri: armar request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sri: enviar al web service: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("sri: leer respuesta: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sri: el web service respondió HTTP %d", res.StatusCode)
	}
	return body, nil
}

func parseFechaAutorizacion(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000-07:00", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha desconocido: %q", s)
}

// ── Estructuras de decodificación ─────────────────────────────────────────────

type mensajeXML struct {
	Identificador        string `xml:"identificador"`
	Mensaje              string `xml:"mensaje"`
	InformacionAdicional string `xml:"informacionAdicional"`
	Tipo                 string `xml:"tipo"`
}

func (m mensajeXML) toDomain() Mensaje {
	return Mensaje{
		Identificador:        m.Identificador,
		Mensaje:              m.Mensaje,
		InformacionAdicional: m.InformacionAdicional,
		Tipo:                 m.Tipo,
	}
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

type recepcionEnvelope struct {
	Fault     soapFault `xml:"Body>Fault"`
	Respuesta struct {
		Estado       string `xml:"estado"`
		Comprobantes []struct {
			ClaveAcceso string       `xml:"claveAcceso"`
			Mensajes    []mensajeXML `xml:"mensajes>mensaje"`
		} `xml:"comprobantes>comprobante"`
	} `xml:"Body>validarComprobanteResponse>RespuestaRecepcionComprobante"`
}

type autorizacionEnvelope struct {
	Fault     soapFault `xml:"Body>Fault"`
	Respuesta struct {
		ClaveAccesoConsultada string `xml:"claveAccesoConsultada"`
		Autorizaciones        []struct {
			Estado             string       `xml:"estado"`
			NumeroAutorizacion string       `xml:"numeroAutorizacion"`
			FechaAutorizacion  string       `xml:"fechaAutorizacion"`
			Ambiente           string       `xml:"ambiente"`
			Mensajes           []mensajeXML `xml:"mensajes>mensaje"`
		} `xml:"autorizaciones>autorizacion"`
	} `xml:"Body>autorizacionComprobanteResponse>RespuestaAutorizacionComprobante"`
}
