// Firma digital XAdES-BES para comprobantes electrónicos SRI.
// El perfil exige digests SHA-1 y RSA-SHA1; la firma se inserta como último
// hijo del elemento raíz, empalmando texto en el offset de la etiqueta de
// cierre para no alterar ni un byte del documento sobre el que se calcularon
// los digests.

package sri

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Namespaces y algoritmos XMLDSig / XAdES del perfil SRI.
const (
	NamespaceDS   = "http://www.w3.org/2000/09/xmldsig#"
	NamespaceEtsi = "http://uri.etsi.org/01903/v1.3.2#"

	AlgC14N            = "http://www.w3.org/TR/2001/REC-xml-c14n-20010315"
	AlgRSASHA1         = "http://www.w3.org/2000/09/xmldsig#rsa-sha1"
	AlgSHA1            = "http://www.w3.org/2000/09/xmldsig#sha1"
	TransformEnveloped = "http://www.w3.org/2000/09/xmldsig#enveloped-signature"

	TypeSignedProperties = "http://uri.etsi.org/01903#SignedProperties"
)

// Ids fijos de los nodos de firma. El Id del elemento raíz del comprobante
// debe ser "comprobante" (lo pone el builder del XML).
const (
	signatureID      = "Signature1"
	signedInfoID     = "Signature-SignedInfo1"
	signedPropsID    = "SignedPropertiesID1"
	signatureValueID = "SignatureValue1"
	certificateID    = "Certificate1"
	docReferenceID   = "Reference-ID-comprobante"
	objectID         = "Signature1-Object1"
)

// XAdESSigner arma la estructura de firma y la empalma en el comprobante.
// Las tres fases (propiedades firmadas, bloque de firma, empalme) son
// funciones independientes para poder verificarlas por separado.
type XAdESSigner struct{}

// NewXAdESSigner crea el servicio.
func NewXAdESSigner() *XAdESSigner {
	return &XAdESSigner{}
}

// Sign firma el comprobante y devuelve el documento original con el nodo
// ds:Signature empalmado inmediatamente antes de la etiqueta de cierre del
// raíz. Cualquier fallo de digest o firma retorna error sin producir una
// firma parcial.
func (s *XAdESSigner) Sign(doc []byte, mat *CertificateMaterial, signingTime time.Time) ([]byte, error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("sri: documento vacío")
	}
	if mat == nil || mat.PrivateKey == nil || mat.Certificate == nil {
		return nil, fmt.Errorf("sri: material de firma incompleto")
	}
	docStr := string(doc)
	if strings.LastIndex(docStr, "</") == -1 {
		return nil, fmt.Errorf("sri: documento sin etiqueta de cierre del raíz")
	}

	// 1) Digest del comprobante completo (forma canónica, transformada enveloped).
	docDigest := DigestSHA1B64(Canonicalize(doc))

	// 2) SignedProperties: hora de firma, digest del certificado, emisor/serial.
	props := s.BuildSignedProperties(mat, signingTime)
	propsDigest := DigestSHA1B64(Canonicalize([]byte(props)))

	// 3) SignedInfo con ambas referencias y sus digests.
	signedInfo := s.BuildSignedInfo(docDigest, propsDigest)

	// 4) Valor de firma: RSA-SHA1 sobre el SignedInfo canónico.
	signatureValue, err := s.ComputeSignatureValue([]byte(signedInfo), mat.PrivateKey)
	if err != nil {
		return nil, err
	}

	// 5) KeyInfo con el certificado y su llave pública.
	keyInfo := s.BuildKeyInfo(mat)

	var sb strings.Builder
	sb.WriteString(`<ds:Signature xmlns:ds="` + NamespaceDS + `" xmlns:etsi="` + NamespaceEtsi + `" Id="` + signatureID + `">`)
	sb.WriteString(signedInfo)
	sb.WriteString(`<ds:SignatureValue Id="` + signatureValueID + `">` + signatureValue + `</ds:SignatureValue>`)
	sb.WriteString(keyInfo)
	sb.WriteString(`<ds:Object Id="` + objectID + `">`)
	sb.WriteString(`<etsi:QualifyingProperties Target="#` + signatureID + `">`)
	sb.WriteString(props)
	sb.WriteString(`</etsi:QualifyingProperties>`)
	sb.WriteString(`</ds:Object>`)
	sb.WriteString(`</ds:Signature>`)

	signed, err := Splice(docStr, sb.String())
	if err != nil {
		return nil, err
	}
	return []byte(signed), nil
}

// BuildSignedProperties construye el bloque etsi:SignedProperties con los
// namespaces declarados inline, de modo que su forma canónica sea
// autocontenida y el digest reproducible.
func (s *XAdESSigner) BuildSignedProperties(mat *CertificateMaterial, signingTime time.Time) string {
	var sb strings.Builder
	sb.WriteString(`<etsi:SignedProperties xmlns:ds="` + NamespaceDS + `" xmlns:etsi="` + NamespaceEtsi + `" Id="` + signedPropsID + `">`)
	sb.WriteString(`<etsi:SignedSignatureProperties>`)
	sb.WriteString(`<etsi:SigningTime>` + signingTime.Format("2006-01-02T15:04:05-07:00") + `</etsi:SigningTime>`)
	sb.WriteString(`<etsi:SigningCertificate><etsi:Cert>`)
	sb.WriteString(`<etsi:CertDigest><ds:DigestMethod Algorithm="` + AlgSHA1 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + mat.CertDigestSHA1B64() + `</ds:DigestValue></etsi:CertDigest>`)
	sb.WriteString(`<etsi:IssuerSerial>`)
	sb.WriteString(`<ds:X509IssuerName>` + escapeXML(mat.IssuerName()) + `</ds:X509IssuerName>`)
	sb.WriteString(`<ds:X509SerialNumber>` + mat.SerialDecimal() + `</ds:X509SerialNumber>`)
	sb.WriteString(`</etsi:IssuerSerial>`)
	sb.WriteString(`</etsi:Cert></etsi:SigningCertificate>`)
	sb.WriteString(`</etsi:SignedSignatureProperties>`)
	sb.WriteString(`<etsi:SignedDataObjectProperties>`)
	sb.WriteString(`<etsi:DataObjectFormat ObjectReference="#` + docReferenceID + `">`)
	sb.WriteString(`<etsi:Description>contenido comprobante</etsi:Description>`)
	sb.WriteString(`<etsi:MimeType>text/xml</etsi:MimeType>`)
	sb.WriteString(`</etsi:DataObjectFormat>`)
	sb.WriteString(`</etsi:SignedDataObjectProperties>`)
	sb.WriteString(`</etsi:SignedProperties>`)
	return sb.String()
}

// BuildSignedInfo construye el SignedInfo con la referencia a las propiedades
// firmadas y la referencia al comprobante (transformada enveloped), cada una
// con su digest SHA-1.
func (s *XAdESSigner) BuildSignedInfo(docDigestB64, propsDigestB64 string) string {
	var sb strings.Builder
	sb.WriteString(`<ds:SignedInfo xmlns:ds="` + NamespaceDS + `" Id="` + signedInfoID + `">`)
	sb.WriteString(`<ds:CanonicalizationMethod Algorithm="` + AlgC14N + `"></ds:CanonicalizationMethod>`)
	sb.WriteString(`<ds:SignatureMethod Algorithm="` + AlgRSASHA1 + `"></ds:SignatureMethod>`)
	sb.WriteString(`<ds:Reference Type="` + TypeSignedProperties + `" URI="#` + signedPropsID + `">`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA1 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + propsDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`<ds:Reference Id="` + docReferenceID + `" URI="#comprobante">`)
	sb.WriteString(`<ds:Transforms><ds:Transform Algorithm="` + TransformEnveloped + `"></ds:Transform></ds:Transforms>`)
	sb.WriteString(`<ds:DigestMethod Algorithm="` + AlgSHA1 + `"></ds:DigestMethod>`)
	sb.WriteString(`<ds:DigestValue>` + docDigestB64 + `</ds:DigestValue>`)
	sb.WriteString(`</ds:Reference>`)
	sb.WriteString(`</ds:SignedInfo>`)
	return sb.String()
}

// BuildKeyInfo construye el KeyInfo con el certificado DER en Base64 y el
// módulo/exponente públicos.
func (s *XAdESSigner) BuildKeyInfo(mat *CertificateMaterial) string {
	certB64 := base64.StdEncoding.EncodeToString(mat.Certificate.Raw)
	modulusB64 := base64.StdEncoding.EncodeToString(mat.PrivateKey.PublicKey.N.Bytes())
	exponentB64 := base64.StdEncoding.EncodeToString(big.NewInt(int64(mat.PrivateKey.PublicKey.E)).Bytes())

	var sb strings.Builder
	sb.WriteString(`<ds:KeyInfo Id="` + certificateID + `">`)
	sb.WriteString(`<ds:X509Data><ds:X509Certificate>` + certB64 + `</ds:X509Certificate></ds:X509Data>`)
	sb.WriteString(`<ds:KeyValue><ds:RSAKeyValue>`)
	sb.WriteString(`<ds:Modulus>` + modulusB64 + `</ds:Modulus>`)
	sb.WriteString(`<ds:Exponent>` + exponentB64 + `</ds:Exponent>`)
	sb.WriteString(`</ds:RSAKeyValue></ds:KeyValue>`)
	sb.WriteString(`</ds:KeyInfo>`)
	return sb.String()
}

// ComputeSignatureValue firma el SignedInfo canónico con RSA-SHA1 y devuelve
// el valor en Base64.
func (s *XAdESSigner) ComputeSignatureValue(signedInfo []byte, priv *rsa.PrivateKey) (string, error) {
	sum := sha1.Sum(Canonicalize(signedInfo))
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA1, sum[:])
	if err != nil {
		return "", fmt.Errorf("sri: firmar SignedInfo: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Splice empalma el bloque de firma inmediatamente antes de la etiqueta de
// cierre del elemento raíz, dejando el resto del documento byte a byte igual.
func Splice(doc, signature string) (string, error) {
	idx := strings.LastIndex(doc, "</")
	if idx == -1 {
		return "", fmt.Errorf("sri: documento sin etiqueta de cierre del raíz")
	}
	return doc[:idx] + signature + doc[idx:], nil
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
