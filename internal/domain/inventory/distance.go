package inventory

import "math"

// EarthRadiusKm radio medio de la Tierra usado por DistanceKm.
const EarthRadiusKm = 6371.0

// DistanceKm distancia de círculo máximo (haversine) entre dos puntos en grados decimales (servicio de dominio).
// Solo se usa para ordenar bodegas candidatas; importa el orden relativo, no la precisión absoluta.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// a puede exceder 1 por redondeo en puntos antipodales
	a = math.Min(1, a)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ValidCoordinates indica si lat/lon están en rango de grados decimales.
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
