package model

// KindFromTipo maps the wire-level donation type to the stored kind.
func KindFromTipo(tipo string) (string, bool) {
	switch tipo {
	case "monetaria":
		return KindMonetaria, true
	case "deducible":
		return KindDeducible, true
	case "especie":
		return KindEspecie, true
	}
	return "", false
}

// TipoFromKind is the inverse mapping used when rendering responses.
func TipoFromKind(kind string) string {
	switch kind {
	case KindMonetaria:
		return "monetaria"
	case KindDeducible:
		return "deducible"
	case KindEspecie:
		return "especie"
	}
	return ""
}
