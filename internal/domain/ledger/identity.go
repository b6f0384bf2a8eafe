package ledger

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

// InvoiceID identidad determinística de la factura: SHA-256 hex de
// documentType|serie|numero (valores ya normalizados). No depende del negocio ni del tiempo,
// por eso la creación detecta duplicados intentando escribir en una clave conocida.
func InvoiceID(docType sunat.DocumentType, serie, numero string) string {
	sum := sha256.Sum256([]byte(string(docType) + "|" + serie + "|" + numero))
	return hex.EncodeToString(sum[:])
}
