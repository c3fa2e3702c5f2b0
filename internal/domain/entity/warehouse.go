package entity

import "time"

// Warehouse representa una bodega física con ubicación geográfica (grados decimales).
type Warehouse struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
	Capacity  *int // opcional
	Active    bool
	CreatedAt time.Time
}
