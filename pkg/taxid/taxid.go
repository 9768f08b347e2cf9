// Package taxid normaliza y valida identificaciones tributarias colombianas (NIT o cédula).
package taxid

import (
	"errors"
	"fmt"
	"strings"
)

// Pesos del dígito de verificación (módulo 11), aplicados de derecha a izquierda.
var weights = [15]int{3, 7, 13, 17, 19, 23, 29, 37, 41, 43, 47, 53, 59, 67, 71}

const (
	minDigits = 5
	maxDigits = len(weights)
)

var ErrFormat = errors.New("identificación inválida")

// CheckDigit dígito de verificación para base (solo dígitos).
func CheckDigit(base string) (byte, error) {
	if err := digitsOnly(base); err != nil {
		return 0, err
	}
	sum := 0
	for i := 0; i < len(base); i++ {
		sum += int(base[len(base)-1-i]-'0') * weights[i]
	}
	r := sum % 11
	if r > 1 {
		r = 11 - r
	}
	return byte('0' + r), nil
}

// Normalize quita puntos y espacios y valida la forma. Con guion, lo que sigue es el dígito
// de verificación y debe coincidir; sin guion se acepta la base sola (cédula o NIT sin DV).
// Devuelve "base" o "base-dv".
func Normalize(s string) (string, error) {
	s = strings.NewReplacer(".", "", " ", "", ",", "").Replace(strings.TrimSpace(s))
	base, dv, hasDV := strings.Cut(s, "-")
	if err := digitsOnly(base); err != nil {
		return "", err
	}
	if !hasDV {
		return base, nil
	}
	if len(dv) != 1 || dv[0] < '0' || dv[0] > '9' {
		return "", fmt.Errorf("%w: dígito de verificación %q", ErrFormat, dv)
	}
	expected, _ := CheckDigit(base)
	if dv[0] != expected {
		return "", fmt.Errorf("%w: dígito de verificación esperado %c, recibido %s", ErrFormat, expected, dv)
	}
	return base + "-" + dv, nil
}

func digitsOnly(s string) error {
	if len(s) < minDigits || len(s) > maxDigits {
		return fmt.Errorf("%w: debe tener entre %d y %d dígitos", ErrFormat, minDigits, maxDigits)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return fmt.Errorf("%w: %q contiene caracteres no numéricos", ErrFormat, s)
		}
	}
	return nil
}
