package sri_test

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laocorp/pos-facturacion/internal/infrastructure/sri"
)

const facturaMinima = `<?xml version="1.0" encoding="UTF-8"?><factura id="comprobante" version="1.1.0"><infoTributaria><ruc>1790012344001</ruc></infoTributaria></factura>`

// extractBlock devuelve el fragmento entre la apertura del elemento y su
// etiqueta de cierre, ambas incluidas.
func extractBlock(t *testing.T, doc, open, close string) string {
	t.Helper()
	start := strings.Index(doc, open)
	require.NotEqual(t, -1, start, "falta %s en el documento firmado", open)
	end := strings.Index(doc[start:], close)
	require.NotEqual(t, -1, end, "falta %s en el documento firmado", close)
	return doc[start : start+end+len(close)]
}

func extractValues(t *testing.T, block, open, close string) []string {
	t.Helper()
	var out []string
	for rest := block; ; {
		i := strings.Index(rest, open)
		if i == -1 {
			break
		}
		rest = rest[i+len(open):]
		j := strings.Index(rest, close)
		require.NotEqual(t, -1, j)
		out = append(out, rest[:j])
		rest = rest[j:]
	}
	return out
}

func TestXAdESSigner_EmpalmaSinAlterarElDocumento(t *testing.T) {
	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	signer := sri.NewXAdESSigner()

	signed, err := signer.Sign([]byte(facturaMinima), mat, time.Now())
	require.NoError(t, err)

	out := string(signed)
	closeIdx := strings.LastIndex(facturaMinima, "</factura>")

	// Todo byte anterior a la firma y la etiqueta de cierre quedan intactos.
	assert.Equal(t, facturaMinima[:closeIdx], out[:closeIdx])
	assert.True(t, strings.HasSuffix(out, "</factura>"))
	assert.Contains(t, out, `<ds:Signature xmlns:ds="http://www.w3.org/2000/09/xmldsig#"`)
	assert.Equal(t, strings.Count(out, "<ds:Signature "), 1)
}

func TestXAdESSigner_DigestsVerificables(t *testing.T) {
	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	signer := sri.NewXAdESSigner()

	signed, err := signer.Sign([]byte(facturaMinima), mat, time.Now())
	require.NoError(t, err)
	out := string(signed)

	signedInfo := extractBlock(t, out, "<ds:SignedInfo", "</ds:SignedInfo>")
	props := extractBlock(t, out, "<etsi:SignedProperties", "</etsi:SignedProperties>")

	digests := extractValues(t, signedInfo, "<ds:DigestValue>", "</ds:DigestValue>")
	require.Len(t, digests, 2, "una referencia a las propiedades y otra al comprobante")

	// Primera referencia: SignedProperties; segunda: el comprobante original.
	assert.Equal(t, sri.DigestSHA1B64(sri.Canonicalize([]byte(props))), digests[0])
	assert.Equal(t, sri.DigestSHA1B64(sri.Canonicalize([]byte(facturaMinima))), digests[1])

	assert.Contains(t, signedInfo, `Type="http://uri.etsi.org/01903#SignedProperties"`)
	assert.Contains(t, signedInfo, `URI="#comprobante"`)
	assert.Contains(t, signedInfo, "enveloped-signature")
}

func TestXAdESSigner_FirmaRSAVerificable(t *testing.T) {
	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	signer := sri.NewXAdESSigner()

	signed, err := signer.Sign([]byte(facturaMinima), mat, time.Now())
	require.NoError(t, err)
	out := string(signed)

	signedInfo := extractBlock(t, out, "<ds:SignedInfo", "</ds:SignedInfo>")
	values := extractValues(t, out, `<ds:SignatureValue Id="SignatureValue1">`, "</ds:SignatureValue>")
	require.Len(t, values, 1)

	sig, err := base64.StdEncoding.DecodeString(values[0])
	require.NoError(t, err)

	sum := sha1.Sum(sri.Canonicalize([]byte(signedInfo)))
	assert.NoError(t, rsa.VerifyPKCS1v15(&mat.PrivateKey.PublicKey, crypto.SHA1, sum[:], sig),
		"la firma debe verificar contra el SignedInfo canónico")
}

func TestXAdESSigner_PropiedadesFirmadas(t *testing.T) {
	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	signingTime := time.Date(2024, 11, 29, 10, 30, 0, 0, time.FixedZone("ECT", -5*3600))

	props := sri.NewXAdESSigner().BuildSignedProperties(mat, signingTime)

	assert.Contains(t, props, "<etsi:SigningTime>2024-11-29T10:30:00-05:00</etsi:SigningTime>")
	assert.Contains(t, props, mat.CertDigestSHA1B64())
	assert.Contains(t, props, "<ds:X509SerialNumber>987654321</ds:X509SerialNumber>")
	assert.Contains(t, props, "<etsi:MimeType>text/xml</etsi:MimeType>")
}

func TestXAdESSigner_KeyInfoContieneCertificadoYLlave(t *testing.T) {
	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))

	keyInfo := sri.NewXAdESSigner().BuildKeyInfo(mat)

	assert.Contains(t, keyInfo, base64.StdEncoding.EncodeToString(mat.Certificate.Raw))
	assert.Contains(t, keyInfo, base64.StdEncoding.EncodeToString(mat.PrivateKey.PublicKey.N.Bytes()))
	assert.Contains(t, keyInfo, "<ds:Exponent>")
}

func TestXAdESSigner_DocumentoMalformado(t *testing.T) {
	mat := generateMaterial(t, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	signer := sri.NewXAdESSigner()

	_, err := signer.Sign([]byte("sin etiqueta de cierre"), mat, time.Now())
	assert.Error(t, err)

	_, err = signer.Sign(nil, mat, time.Now())
	assert.Error(t, err)
}
