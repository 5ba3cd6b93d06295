// seed crea el usuario administrador y un catálogo inicial en PostgreSQL.
//
// Uso: go run ./cmd/seed [ruta/catalogo.csv]
// Sin archivo usa un catálogo mínimo. El CSV viene de Excel (ISO-8859-1, separado por ';').
// Es idempotente: lo que ya existe (email, categoría, proveedor, SKU, transacción) se omite.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/auth"
	"github.com/jhoicas/inventario-ledger/internal/application/authz"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/ledger"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/fieldcrypt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const sampleTransactionNo = "SEED-0001"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level}).Component("seed")

	rows := defaultCatalog()
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("abrir catálogo")
		}
		rows, err = readCatalog(f)
		f.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("catálogo")
		}
	}

	codec, err := fieldcrypt.NewFromBase64(cfg.App.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("APP_KEY inválida")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	s := &seeder{
		log:        log,
		users:      postgres.NewUserRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		suppliers:  postgres.NewSupplierRepository(pool, codec),
		items:      postgres.NewItemRepository(pool),
	}
	gate := authz.NewRoleGate()
	recorder := audit.NewRecorder(postgres.NewActivityRepository(pool), log)
	s.categoryUC = usecase.NewCategoryUseCase(s.categories, s.items, gate, recorder)
	s.supplierUC = usecase.NewSupplierUseCase(s.suppliers, s.items, gate, recorder)
	s.itemUC = usecase.NewItemUseCase(s.items, s.categories, s.suppliers, postgres.NewTransactionRepository(pool), gate, recorder)
	s.ledgerUC = ledger.NewLedgerUseCase(ledger.Deps{
		TxRunner: postgres.NewTxRunner(pool),
		TxRepo:   postgres.NewTransactionRepository(pool),
		Gate:     gate,
		Recorder: recorder,
		Log:      log,
	})

	if err := s.run(ctx, rows); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Int("items", len(rows)).Msg("seed completado")
}

type seeder struct {
	log        *logger.Logger
	users      *postgres.UserRepo
	categories *postgres.CategoryRepo
	suppliers  *postgres.SupplierRepo
	items      *postgres.ItemRepo
	categoryUC *usecase.CategoryUseCase
	supplierUC *usecase.SupplierUseCase
	itemUC     *usecase.ItemUseCase
	ledgerUC   *ledger.LedgerUseCase
}

func (s *seeder) run(ctx context.Context, rows []catalogRow) error {
	if err := s.admin(ctx); err != nil {
		return err
	}

	categoryIDs := map[string]string{}
	supplierIDs, err := s.existingSuppliers(ctx)
	if err != nil {
		return err
	}

	var sample []ledger.LineInput
	for _, row := range rows {
		catID, err := s.category(ctx, categoryIDs, row.Category)
		if err != nil {
			return err
		}
		supID, err := s.supplier(ctx, supplierIDs, row.Supplier)
		if err != nil {
			return err
		}
		existing, err := s.items.GetBySKU(ctx, row.SKU)
		if err != nil {
			return err
		}
		itemID := ""
		if existing != nil {
			itemID = existing.ID
		} else {
			out, err := s.itemUC.Create(ctx, entity.SystemActor, dto.CreateItemRequest{
				Name: row.Name, SKU: row.SKU, Price: row.Price, Stock: row.Stock,
				CategoryID: catID, SupplierID: supID,
			})
			if err != nil {
				return fmt.Errorf("ítem %s: %w", row.SKU, err)
			}
			itemID = out.ID
		}
		if len(sample) < 3 {
			sample = append(sample, ledger.LineInput{ItemID: itemID, Quantity: 5, Price: row.Price})
		}
	}

	if len(sample) == 0 {
		return nil
	}
	_, err = s.ledgerUC.Create(ctx, entity.SystemActor, ledger.CreateInput{
		TransactionNo: sampleTransactionNo,
		Date:          time.Now().UTC().Truncate(24 * time.Hour),
		Type:          entity.TransactionTypeIn,
		Notes:         "Entrada inicial generada por el seed",
		Lines:         sample,
	})
	var dup *domain.DuplicateError
	if errors.As(err, &dup) {
		s.log.Info().Str("transaction_no", sampleTransactionNo).Msg("transacción de ejemplo ya existe")
		return nil
	}
	return err
}

func (s *seeder) admin(ctx context.Context) error {
	email := strings.ToLower(envOr("SEED_ADMIN_EMAIL", "admin@inventario.local"))
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		s.log.Info().Str("email", email).Msg("admin ya existe")
		return nil
	}
	hash, err := auth.HashPassword(envOr("SEED_ADMIN_PASSWORD", "admin123"))
	if err != nil {
		return err
	}
	now := time.Now()
	if err := s.users.Create(ctx, &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrador",
		Role:         entity.RoleAdmin,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return fmt.Errorf("crear admin: %w", err)
	}
	s.log.Info().Str("email", email).Msg("admin creado")
	return nil
}

func (s *seeder) category(ctx context.Context, cache map[string]string, name string) (string, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	existing, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		cache[name] = existing.ID
		return existing.ID, nil
	}
	out, err := s.categoryUC.Create(ctx, entity.SystemActor, dto.CreateCategoryRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("categoría %s: %w", name, err)
	}
	cache[name] = out.ID
	return out.ID, nil
}

func (s *seeder) existingSuppliers(ctx context.Context) (map[string]string, error) {
	list, err := s.suppliers.List(ctx, 1000, 0)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]string, len(list))
	for _, sp := range list {
		ids[sp.Name] = sp.ID
	}
	return ids, nil
}

func (s *seeder) supplier(ctx context.Context, cache map[string]string, name string) (string, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	out, err := s.supplierUC.Create(ctx, entity.SystemActor, dto.CreateSupplierRequest{
		Name:          name,
		Address:       "Por definir",
		Phone:         "0000000",
		Email:         fmt.Sprintf("contacto+%d@proveedor.local", len(cache)+1),
		ContactPerson: "Por definir",
	})
	if err != nil {
		return "", fmt.Errorf("proveedor %s: %w", name, err)
	}
	cache[name] = out.ID
	return out.ID, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
