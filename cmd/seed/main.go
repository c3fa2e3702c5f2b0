// seed carga datos de demostración: tres bodegas en Bogotá, productos de seguridad industrial
// y su stock inicial. Las cantidades se suman con el mismo caso de uso de reposición que usa la API,
// así que ejecutarlo dos veces duplica el stock.
//
// Uso: go run ./cmd/seed
// Con JWT_SECRET definido imprime además un token por rol (admin, operario, cliente).
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Logistica-api/internal/application/inventory"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Logistica-api/pkg/config"
	"github.com/jhoicas/Logistica-api/pkg/jwt"
	"github.com/jhoicas/Logistica-api/pkg/logger"
)

type warehouseSeed struct {
	name     string
	lat, lon float64
}

var warehouses = []warehouseSeed{
	{"Bodega Norte", 4.710989, -74.072092},
	{"Bodega Centro", 4.598889, -74.080833},
	{"Bodega Sur", 4.570868, -74.297333},
}

// stock por producto y bodega.
var stock = []struct {
	product   string
	warehouse string
	units     int
}{
	{"Casco de Seguridad", "Bodega Norte", 150},
	{"Casco de Seguridad", "Bodega Centro", 200},
	{"Casco de Seguridad", "Bodega Sur", 100},
	{"Guantes Industriales", "Bodega Norte", 500},
	{"Guantes Industriales", "Bodega Centro", 400},
	{"Guantes Industriales", "Bodega Sur", 300},
	{"Gafas de Proteccion", "Bodega Norte", 250},
	{"Gafas de Proteccion", "Bodega Centro", 300},
	{"Botas de Seguridad", "Bodega Norte", 120},
	{"Botas de Seguridad", "Bodega Sur", 80},
	{"Chaleco Reflectivo", "Bodega Centro", 350},
	{"Chaleco Reflectivo", "Bodega Sur", 200},
	{"Mascarilla N95", "Bodega Norte", 1000},
	{"Mascarilla N95", "Bodega Centro", 1500},
	{"Mascarilla N95", "Bodega Sur", 800},
	{"Protector Auditivo", "Bodega Norte", 180},
	{"Protector Auditivo", "Bodega Centro", 220},
	{"Arnes de Seguridad", "Bodega Norte", 60},
	{"Arnes de Seguridad", "Bodega Centro", 40},
	{"Arnes de Seguridad", "Bodega Sur", 30},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.Storage.Driver != config.DriverPostgres {
		fmt.Fprintln(os.Stderr, "seed requiere STORAGE_DRIVER=postgres")
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-seed"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if cfg.DB.RunMigrations {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString(), log); err != nil {
			fmt.Fprintf(os.Stderr, "Migraciones: %v\n", err)
			os.Exit(1)
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	restock := inventory.NewRestockUseCase(postgres.NewTxRunner(pool, cfg.DB.LockTimeout), inventory.DefaultRetryPolicy(), log)

	coords := make(map[string]warehouseSeed, len(warehouses))
	for _, w := range warehouses {
		coords[w.name] = w
	}
	total := 0
	for _, s := range stock {
		w := coords[s.warehouse]
		rec, err := restock.Restock(ctx, inventory.RestockInput{
			ProductName:   s.product,
			Units:         s.units,
			WarehouseName: w.name,
			Latitude:      &w.lat,
			Longitude:     &w.lon,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Reponer %s @ %s: %v\n", s.product, s.warehouse, err)
			os.Exit(1)
		}
		total += s.units
		fmt.Printf("   - %s @ %s: %d unidades\n", s.product, s.warehouse, rec.Quantity)
	}
	fmt.Printf("Registros: %d, unidades repuestas: %d\n", len(stock), total)

	if cfg.JWT.Enabled() {
		ttl := time.Duration(cfg.JWT.Expiration) * time.Minute
		for _, role := range []string{jwt.RoleAdmin, jwt.RoleOperario, jwt.RoleCliente} {
			tok, err := jwt.Generate(cfg.JWT.Secret, role, role, cfg.JWT.Issuer, ttl)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Token %s: %v\n", role, err)
				os.Exit(1)
			}
			fmt.Printf("%s: Bearer %s\n", role, tok)
		}
	}
}
