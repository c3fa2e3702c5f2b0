package inventory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_MismoPuntoEsCero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(4.6, -74.08, 4.6, -74.08))
}

func TestDistanceKm_UnGradoDeLatitud(t *testing.T) {
	// 1° de latitud ≈ 111.19 km con R = 6371
	d := DistanceKm(0, 0, 1, 0)
	assert.InDelta(t, 111.19, d, 0.01)
}

func TestDistanceKm_Simetrica(t *testing.T) {
	a := DistanceKm(4.710989, -74.072092, 4.570868, -74.297333)
	b := DistanceKm(4.570868, -74.297333, 4.710989, -74.072092)
	assert.InDelta(t, a, b, 1e-9)
}

func TestDistanceKm_Antipodas(t *testing.T) {
	d := DistanceKm(0, 0, 0, 180)
	assert.InDelta(t, math.Pi*EarthRadiusKm, d, 1e-6)
	assert.False(t, math.IsNaN(d))
}

func TestDistanceKm_BodegasBogota(t *testing.T) {
	// Bodega Norte -> Bodega Centro: ~12.4 km
	d := DistanceKm(4.710989, -74.072092, 4.598889, -74.080833)
	assert.InDelta(t, 12.5, d, 0.3)
}

func TestValidCoordinates(t *testing.T) {
	tests := map[string]struct {
		lat, lon float64
		want     bool
	}{
		"origen":         {0, 0, true},
		"limites":        {90, -180, true},
		"latitud fuera":  {90.1, 0, false},
		"longitud fuera": {0, 181, false},
		"NaN":            {math.NaN(), 0, false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCoordinates(tt.lat, tt.lon))
		})
	}
}
