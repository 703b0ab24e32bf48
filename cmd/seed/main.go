// cmd/seed/main.go loads a demo pantry and menu, and prints dev tokens.
// Usage: go run ./cmd/seed
// Re-running is safe: existing SKUs and dish names are left untouched.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"kitchenledger/internal/config"
	"kitchenledger/internal/infra"
	"kitchenledger/internal/middleware"
	"kitchenledger/internal/model"
	"kitchenledger/internal/units"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedItem struct {
	sku, name     string
	qty           float64
	unit          units.Unit
	price         float64
	purchaseUnit  units.Unit
	purchaseQty   float64
	shelfLifeDays int
}

type seedLine struct {
	sku  string
	qty  float64
	unit units.Unit
}

type seedDish struct {
	name, category string
	price          float64
	recipe         []seedLine
}

var pantry = []seedItem{
	{"BEEF-01", "Ground beef", 4, units.Kilogram, 18, units.Kilogram, 1, 3},
	{"BUN-01", "Brioche bun", 60, units.Each, 6, units.Each, 12, 5},
	{"CHED-01", "Cheddar", 1500, units.Gram, 12, units.Kilogram, 1, 21},
	{"POTA-01", "Potatoes", 20, units.Kilogram, 9, units.Kilogram, 10, 0},
	{"OIL-01", "Frying oil", 10, units.Liter, 25, units.Liter, 5, 0},
	{"BASIL-01", "Basil", 300, units.Gram, 4, units.Gram, 100, 6},
	{"PAST-01", "Spaghetti", 5, units.Kilogram, 3, units.Kilogram, 1, 0},
	{"COLA-01", "Cola can", 48, units.Each, 12, units.Each, 24, 0},
}

var menu = []seedDish{
	{"Classic Burger", "Mains", 14, []seedLine{{"BUN-01", 1, units.Each}, {"BEEF-01", 180, units.Gram}, {"CHED-01", 30, units.Gram}}},
	{"Fries", "Sides", 5, []seedLine{{"POTA-01", 250, units.Gram}, {"OIL-01", 50, units.Milliliter}}},
	{"Pesto Spaghetti", "Mains", 13, []seedLine{{"PAST-01", 120, units.Gram}, {"BASIL-01", 25, units.Gram}}},
	{"Cola", "Drinks", 3, []seedLine{{"COLA-01", 1, units.Each}}},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	ctx := context.Background()

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bySKU, err := seedPantry(tx)
		if err != nil {
			return err
		}
		return seedMenu(tx, bySKU)
	}); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Int("items", len(pantry)).Int("dishes", len(menu)).Msg("seed complete")

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, skipping dev tokens")
		return
	}
	for _, role := range []string{middleware.RoleAdmin, middleware.RoleManager, middleware.RoleStaff} {
		tok, err := devToken(cfg.JWTSecret, role)
		if err != nil {
			log.Fatal().Err(err).Msg("sign token")
		}
		fmt.Printf("%-8s %s\n", role, tok)
	}
}

func seedPantry(tx *gorm.DB) (map[string]uuid.UUID, error) {
	now := time.Now()
	for _, s := range pantry {
		item := model.InventoryItem{
			Name:             s.name,
			SKU:              s.sku,
			Quantity:         s.qty,
			Unit:             s.unit,
			PurchasePrice:    decimal.NewNullDecimal(decimal.NewFromFloat(s.price)),
			PurchaseUnit:     s.purchaseUnit,
			PurchaseQuantity: s.purchaseQty,
		}
		if s.shelfLifeDays > 0 {
			days := s.shelfLifeDays
			item.ExpiresInDays = &days
			item.DateReceived = &now
		}
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "sku"}}, DoNothing: true}).Create(&item).Error; err != nil {
			return nil, fmt.Errorf("seed item %s: %w", s.sku, err)
		}
	}

	var items []model.InventoryItem
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	bySKU := make(map[string]uuid.UUID, len(items))
	for _, it := range items {
		bySKU[it.SKU] = it.ID
	}
	return bySKU, nil
}

func seedMenu(tx *gorm.DB, bySKU map[string]uuid.UUID) error {
	names := make(map[string]string, len(pantry))
	for _, s := range pantry {
		names[s.sku] = s.name
	}

	for _, s := range menu {
		var existing int64
		if err := tx.Model(&model.Dish{}).Where("name = ?", s.name).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			continue
		}
		d := model.Dish{Name: s.name, Category: s.category, Price: decimal.NewFromFloat(s.price)}
		for i, l := range s.recipe {
			d.Recipe = append(d.Recipe, model.RecipeLine{
				InventoryItemID:  bySKU[l.sku],
				QuantityRequired: l.qty,
				Unit:             l.unit,
				IngredientName:   names[l.sku],
				Position:         i,
			})
		}
		if err := tx.Create(&d).Error; err != nil {
			return fmt.Errorf("seed dish %s: %w", s.name, err)
		}
	}
	return nil
}

func devToken(secret, role string) (string, error) {
	claims := middleware.JWTClaims{
		UserID: uuid.NewString(),
		Name:   "Demo " + role,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
