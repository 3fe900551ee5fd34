package utils

// remove qualquer coisa que não seja dígito ASCII (0-9)
func SanitizeCNPJ(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			out = append(out, c)
		}
	}
	return string(out)
}

// Exige 14 dígitos ASCII e rejeita todos os dígitos iguais.
// Dígitos verificadores não são conferidos: lojas legadas foram cadastradas sem essa regra.
func ValidateCNPJ(cnpj string) bool {
	if len(cnpj) != 14 {
		return false
	}
	allEq := true
	for i := 0; i < 14; i++ {
		if cnpj[i] < '0' || cnpj[i] > '9' {
			return false
		}
		if cnpj[i] != cnpj[0] {
			allEq = false
		}
	}
	return !allEq
}

// Filtro de busca: "12.345" vira "12345"; sem dígitos, devolve o termo como veio.
func NormalizeCNPJQuery(q string) string {
	if d := SanitizeCNPJ(q); d != "" {
		return d
	}
	return q
}
