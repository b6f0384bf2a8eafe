package sunat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

func TestParseDocumentType(t *testing.T) {
	d, ok := sunat.ParseDocumentType(" factura ")
	assert.True(t, ok)
	assert.Equal(t, sunat.DocumentFactura, d)
	assert.Equal(t, "01", d.Code())

	d, ok = sunat.ParseDocumentType("BOLETA")
	assert.True(t, ok)
	assert.Equal(t, "03", d.Code())

	_, ok = sunat.ParseDocumentType("NOTA_CREDITO")
	assert.False(t, ok, "solo FACTURA y BOLETA son válidos")
}

func TestParseIdentityDocType(t *testing.T) {
	for in, code := range map[string]string{"ruc": "6", "DNI": "1", "Otro": "0"} {
		v, ok := sunat.ParseIdentityDocType(in)
		assert.True(t, ok, in)
		assert.Equal(t, code, v.Code())
	}
	_, ok := sunat.ParseIdentityDocType("PASAPORTE")
	assert.False(t, ok)
}
