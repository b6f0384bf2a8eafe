package sunat

import "fmt"

// pesos del dígito verificador del RUC (módulo 11), aplicados a los 10 primeros dígitos.
var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidateRUC valida longitud (11 dígitos), prefijo de contribuyente y dígito verificador.
func ValidateRUC(ruc string) error {
	if len(ruc) != 11 {
		return fmt.Errorf("sunat: el RUC debe tener 11 dígitos, se recibieron %d", len(ruc))
	}
	for _, r := range ruc {
		if r < '0' || r > '9' {
			return fmt.Errorf("sunat: el RUC solo admite dígitos")
		}
	}
	switch ruc[:2] {
	case "10", "15", "17", "20":
	default:
		return fmt.Errorf("sunat: prefijo de RUC %q inválido", ruc[:2])
	}
	expected := rucCheckDigit(ruc[:10])
	if ruc[10] != expected {
		return fmt.Errorf("sunat: dígito verificador del RUC inválido: esperado %c, recibido %c", expected, ruc[10])
	}
	return nil
}

func rucCheckDigit(base string) byte {
	var sum int
	for i := 0; i < 10; i++ {
		sum += int(base[i]-'0') * rucWeights[i]
	}
	d := 11 - sum%11
	switch d {
	case 10:
		d = 0
	case 11:
		d = 1
	}
	return byte('0' + d)
}
