package inventory

import "github.com/jhoicas/Logistica-api/internal/domain/entity"

// Nearest elige el registro cuya bodega está más cerca de (lat, lon).
// Empates: gana el menor ID de bodega, para que el resultado sea reproducible.
// Los registros sin Warehouse cargada se ignoran. Devuelve nil si no hay candidatas.
func Nearest(candidates []*entity.StockRecord, lat, lon float64) *entity.StockRecord {
	var (
		best     *entity.StockRecord
		bestDist float64
	)
	for _, c := range candidates {
		if c == nil || c.Warehouse == nil {
			continue
		}
		d := DistanceKm(lat, lon, c.Warehouse.Latitude, c.Warehouse.Longitude)
		if best == nil || d < bestDist || (d == bestDist && c.WarehouseID < best.WarehouseID) {
			best, bestDist = c, d
		}
	}
	return best
}
