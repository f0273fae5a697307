// Forma canónica reducida para fragmentos XML autogenerados y sus digests.
// No es un canonicalizador C14N de propósito general: solo garantiza bytes
// reproducibles para la forma fija de documento que produce este emisor, y no
// debe usarse sobre XML de terceros.

package sri

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"regexp"
	"strings"
)

var (
	xmlDeclaration  = regexp.MustCompile(`(?s)^\s*<\?xml.*?\?>`)
	interTagSpacing = regexp.MustCompile(`>\s+<`)
)

// Canonicalize produce la secuencia de bytes canónica de un fragmento XML:
// elimina la declaración <?xml ...?>, colapsa el espacio entre etiquetas y
// recorta el espacio inicial y final.
func Canonicalize(fragment []byte) []byte {
	s := xmlDeclaration.ReplaceAllString(string(fragment), "")
	s = interTagSpacing.ReplaceAllString(s, "><")
	return []byte(strings.TrimSpace(s))
}

// DigestSHA1B64 digest SHA-1 en Base64 (el perfil de firma exige SHA-1).
func DigestSHA1B64(data []byte) string {
	sum := sha1.Sum(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// DigestSHA256B64 digest SHA-256 en Base64.
func DigestSHA256B64(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}
