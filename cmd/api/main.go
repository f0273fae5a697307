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

	"github.com/laocorp/pos-facturacion/internal/application/billing"
	"github.com/laocorp/pos-facturacion/internal/application/sales"
	domainsri "github.com/laocorp/pos-facturacion/internal/domain/sri"
	"github.com/laocorp/pos-facturacion/internal/infrastructure/postgres"
	infrasri "github.com/laocorp/pos-facturacion/internal/infrastructure/sri"
	httpRouter "github.com/laocorp/pos-facturacion/internal/interfaces/http"
	"github.com/laocorp/pos-facturacion/pkg/config"
	"github.com/laocorp/pos-facturacion/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("sri_ambiente", cfg.SRI.Ambiente).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	companyRepo := postgres.NewCompanyRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	invoiceRepo := postgres.NewElectronicInvoiceRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	createSaleUC := sales.NewCreateSaleUseCase(txRunner, companyRepo, log)

	// Cliente SOAP SRI — en modo "dev" el pipeline firma pero no envía.
	var submitter billing.Submitter
	if cfg.SRI.AppEnv != "dev" && cfg.SRI.AppEnv != "" {
		submitter = infrasri.NewSOAPClient(cfg.SRI, log)
	}

	// Pipeline de emisión: clave de acceso → XML → XAdES-BES → recepción → autorización
	issueInvoiceUC := billing.NewIssueInvoiceUseCase(
		saleRepo, companyRepo, customerRepo, productRepo, invoiceRepo,
		txRunner,
		domainsri.NewClaveAccesoService(),
		infrasri.NewFacturaBuilder(),
		infrasri.NewXAdESSigner(),
		submitter,
		infrasri.NewFileCertificateSource(cfg.SRI),
		cfg.SRI,
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Facturación API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale:   createSaleUC,
		IssueInvoice: issueInvoiceUC,
		SaleRepo:     saleRepo,
		InvoiceRepo:  invoiceRepo,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
