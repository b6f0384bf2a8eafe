// Package sunat contiene los catálogos SUNAT (Perú) que usa el ledger de facturación:
// tipos de comprobante, tipos de documento de identidad, moneda y zona horaria fiscal.
package sunat

import (
	"strings"
	"time"
)

// =============================================================================
// Catálogo 01 - Tipo de documento (comprobante de pago)
// =============================================================================

// DocumentType tipo de comprobante emitido por el ledger.
type DocumentType string

const (
	DocumentFactura DocumentType = "FACTURA" // Código SUNAT 01
	DocumentBoleta  DocumentType = "BOLETA"  // Código SUNAT 03
)

// ParseDocumentType normaliza (trim + mayúsculas) y valida el tipo de comprobante.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(strings.ToUpper(strings.TrimSpace(s))) {
	case DocumentFactura:
		return DocumentFactura, true
	case DocumentBoleta:
		return DocumentBoleta, true
	}
	return "", false
}

// Code devuelve el código del catálogo 01.
func (d DocumentType) Code() string {
	switch d {
	case DocumentFactura:
		return "01"
	case DocumentBoleta:
		return "03"
	}
	return ""
}

// Title texto para la representación impresa.
func (d DocumentType) Title() string {
	switch d {
	case DocumentFactura:
		return "FACTURA ELECTRÓNICA"
	case DocumentBoleta:
		return "BOLETA DE VENTA ELECTRÓNICA"
	}
	return string(d)
}

// =============================================================================
// Catálogo 06 - Tipo de documento de identidad
// =============================================================================

// IdentityDocType tipo de documento del cliente.
type IdentityDocType string

const (
	IdentityRUC  IdentityDocType = "RUC"  // Código SUNAT 6
	IdentityDNI  IdentityDocType = "DNI"  // Código SUNAT 1
	IdentityOtro IdentityDocType = "OTRO" // Código SUNAT 0
)

// ParseIdentityDocType normaliza y valida el tipo de documento de identidad.
func ParseIdentityDocType(s string) (IdentityDocType, bool) {
	switch IdentityDocType(strings.ToUpper(strings.TrimSpace(s))) {
	case IdentityRUC:
		return IdentityRUC, true
	case IdentityDNI:
		return IdentityDNI, true
	case IdentityOtro:
		return IdentityOtro, true
	}
	return "", false
}

// Code devuelve el código del catálogo 06.
func (t IdentityDocType) Code() string {
	switch t {
	case IdentityRUC:
		return "6"
	case IdentityDNI:
		return "1"
	case IdentityOtro:
		return "0"
	}
	return ""
}

// =============================================================================
// Catálogo 02 - Moneda y tributos
// =============================================================================

const (
	CurrencyPEN = "PEN" // Sol peruano; única moneda soportada
	TaxCodeIGV  = "1000"
)

// Lima zona horaria fiscal (UTC-5, sin horario de verano).
var Lima = time.FixedZone("PET", -5*60*60)
