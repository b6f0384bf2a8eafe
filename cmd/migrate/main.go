// migrate aplica las migraciones SQL embebidas del ledger.
//
// Uso: go run ./cmd/migrate [up|down|version]
// Por defecto ejecuta "up". Lee la conexión de las mismas variables que la API (DATABASE_URL o DB_*).
package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/facturacion-pe/internal/infrastructure/postgres"
	"github.com/jhoicas/facturacion-pe/pkg/config"
	"github.com/jhoicas/facturacion-pe/pkg/logger"
)

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo iniciar el migrador")
	}
	defer m.Close()

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "version":
		var version uint
		var dirty bool
		version, dirty, err = m.Version()
		if err == nil {
			fmt.Printf("version=%d dirty=%t\n", version, dirty)
		}
	default:
		fmt.Fprintf(os.Stderr, "Comando desconocido %q (up|down|version)\n", cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", cmd).Msg("migración fallida")
	}
}
