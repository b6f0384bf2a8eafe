package sunat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/facturacion-pe/pkg/sunat"
)

func TestValidateRUC(t *testing.T) {
	assert.NoError(t, sunat.ValidateRUC("20131312955"))
	assert.NoError(t, sunat.ValidateRUC("20100070970"), "resto 1 → dígito 0")

	assert.Error(t, sunat.ValidateRUC("20131312954"), "dígito verificador")
	assert.Error(t, sunat.ValidateRUC("2013131295"), "longitud")
	assert.Error(t, sunat.ValidateRUC("3013131295X"), "no numérico")
	assert.Error(t, sunat.ValidateRUC("30131312955"), "prefijo")
}
