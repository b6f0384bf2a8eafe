package sunat

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// === Serie y correlativo del comprobante ===

var (
	serieRe  = regexp.MustCompile(`^[FB][A-Z0-9]{3}$`)
	numeroRe = regexp.MustCompile(`^[0-9]{1,8}$`)
)

// SeriePrefix letra inicial que SUNAT exige a la serie de cada tipo de comprobante.
func (d DocumentType) SeriePrefix() byte {
	if d == DocumentBoleta {
		return 'B'
	}
	return 'F'
}

// ParseSerie normaliza la serie (mayúsculas, sin espacios) y exige 4 caracteres
// alfanuméricos con el prefijo del tipo de documento: F001 para FACTURA, B001 para BOLETA.
func ParseSerie(d DocumentType, s string) (string, bool) {
	s = cases.Upper(language.Und).String(strings.TrimSpace(s))
	if !serieRe.MatchString(s) || s[0] != d.SeriePrefix() {
		return "", false
	}
	return s, true
}

// ParseNumero acepta el correlativo de 1 a 8 dígitos y lo devuelve sin ceros a la izquierda,
// de modo que "00000123" y "123" identifican el mismo comprobante. El cero no es válido.
func ParseNumero(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !numeroRe.MatchString(s) {
		return "", false
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "", false
	}
	return s, true
}
