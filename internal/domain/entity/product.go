package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Product representa un producto identificado por su nombre único.
// El nombre es inmutable una vez creado; UnitPrice se usa para calcular el total de la orden.
type Product struct {
	ID        int64
	Name      string
	UnitPrice decimal.Decimal
	CreatedAt time.Time
}

// CanonicalName normaliza un nombre de producto o bodega (espacios y forma Unicode NFC)
// para que nombres visualmente idénticos resuelvan a la misma fila.
func CanonicalName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
