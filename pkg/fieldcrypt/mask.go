package fieldcrypt

import "strings"

// Mask deja visibles los primeros first y últimos last caracteres y reemplaza el resto por '*'.
// Si el valor es demasiado corto se enmascara completo.
func Mask(value string, first, last int) string {
	r := []rune(value)
	n := len(r)
	if n == 0 {
		return ""
	}
	if n <= first+last {
		return strings.Repeat("*", n)
	}
	return string(r[:first]) + strings.Repeat("*", n-first-last) + string(r[n-last:])
}

// MaskPhone muestra los 3 primeros y 2 últimos dígitos.
func MaskPhone(phone string) string {
	return Mask(phone, 3, 2)
}

// MaskEmail enmascara la parte local (2 primeros, 1 último) y conserva el dominio.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return Mask(email, 2, 2)
	}
	return Mask(email[:at], 2, 1) + email[at:]
}
