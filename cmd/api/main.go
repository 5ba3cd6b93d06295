package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/auth"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ws"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/fieldcrypt"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	codec, err := fieldcrypt.NewFromBase64(cfg.App.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("APP_KEY inválida")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, codec, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	gate := authz.NewRoleGate()
	recorder := audit.NewRecorder(store.activities, log)

	tokens, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL())
	if err != nil {
		log.Fatal().Err(err).Msg("configuración JWT")
	}
	authUC := auth.NewAuthUseCase(store.users, recorder, tokens)
	categoryUC := usecase.NewCategoryUseCase(store.categories, store.items, gate, recorder)
	supplierUC := usecase.NewSupplierUseCase(store.suppliers, store.items, gate, recorder)
	itemUC := usecase.NewItemUseCase(store.items, store.categories, store.suppliers, store.transactions, gate, recorder)
	lowStockUC := inventory.NewLowStockUseCase(store.items)
	ledgerUC := ledger.NewLedgerUseCase(ledger.Deps{
		TxRunner:  store.txRunner,
		TxRepo:    store.transactions,
		Gate:      gate,
		Recorder:  recorder,
		Publisher: hub,
		Slips:     infrapdf.NewSlipGenerator(cfg.App.Name),
		Log:       log,
	})
	dashboardUC := analytics.NewDashboardUseCase(store.stats, store.categories, store.suppliers)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.CORS(cfg.HTTP.CORSOrigins))
	app.Use(httpRouter.SecurityHeaders())
	app.Use(httpRouter.AccessLog(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		CategoryUC:  categoryUC,
		SupplierUC:  supplierUC,
		ItemUC:      itemUC,
		LowStockUC:  lowStockUC,
		LedgerUC:    ledgerUC,
		DashboardUC: dashboardUC,
		Gate:        gate,
		Hub:         hub,
		Tokens:      tokens,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
