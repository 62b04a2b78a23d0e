// utilitário pequeno para formatação rápida/consistente de valores numéricos em headers/logs.
//    Evita puxar fmt (que é mais “pesado” e genérico) só para formatação simples

package httpcore

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }
