package worker

// menu_analyzer.go
// Recurring scan of the menu against current stock. Flags dishes that cannot
// be made or are running low, ingredients about to expire or in surplus, and
// ranks dishes that would use those ingredients by margin. The findings are
// turned into one broadcast "brief" notification per rolling day.

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"kitchenledger/internal/costing"
	"kitchenledger/internal/model"
	"kitchenledger/internal/repository"
	"kitchenledger/internal/service"
	"kitchenledger/internal/units"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BriefTitle is the fixed title of the daily brief; the 24h guard keys on it.
const BriefTitle = "Daily Operations & Profit Brief"

const briefGuardWindow = 24 * time.Hour

// Outcome of one analyzer run.
type Outcome string

const (
	OutcomeNothingToReport Outcome = "nothing_to_report"
	OutcomeAlreadySent     Outcome = "already_sent"
	OutcomePublished       Outcome = "published"
)

const briefSystemPrompt = `You are an expert restaurant manager. Write a concise daily brief (under 100 words).
1. Prioritize URGENT "CANNOT MAKE" items.
2. List "LOW STOCK" items.
3. Suggest high-profit specials for "EXPIRING" or "SURPLUS" inventory.
No markdown. Professional tone.`

// Advisor drafts the brief text. It never fails: on error it returns a placeholder.
type Advisor interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) string
}

// BriefMailer queues the brief for email delivery.
type BriefMailer interface {
	EnqueueEmail(ctx context.Context, payload EmailJobPayload) error
}

// AnalyzerConfig holds the analyzer thresholds.
type AnalyzerConfig struct {
	LowStockThreshold  int     // servings below which a dish is low-stock
	HighStockThreshold float64 // stock above which an item is surplus
	ExpiryWindowDays   int
	TopSuggestions     int // specials kept per category
	Recipients         []string
}

func (c *AnalyzerConfig) withDefaults() {
	if c.LowStockThreshold <= 0 {
		c.LowStockThreshold = 10
	}
	if c.HighStockThreshold <= 0 {
		c.HighStockThreshold = 50
	}
	if c.ExpiryWindowDays <= 0 {
		c.ExpiryWindowDays = 7
	}
	if c.TopSuggestions <= 0 {
		c.TopSuggestions = 2
	}
}

// DishAlert is a dish that cannot be made or is close to running out.
type DishAlert struct {
	DishID     uuid.UUID
	Dish       string
	Ingredient string
	Reason     string // cannot-make only
	Servings   int    // low-stock only
}

func (a DishAlert) String() string {
	if a.Reason != "" {
		return fmt.Sprintf("%s (%s)", a.Dish, a.Reason)
	}
	return fmt.Sprintf("%s (only %d left, %s)", a.Dish, a.Servings, a.Ingredient)
}

// ItemAlert is an inventory item that is expiring soon or overstocked.
type ItemAlert struct {
	ID            uuid.UUID
	Name          string
	DaysRemaining int
	Quantity      float64
	Unit          units.Unit
}

// Special is a dish suggested to move expiring or surplus stock.
type Special struct {
	DishID uuid.UUID
	Dish   string
	Margin decimal.Decimal // percent, whole number
}

func (s Special) String() string {
	return fmt.Sprintf("%s (%s%%)", s.Dish, s.Margin.StringFixed(0))
}

// Report is the result of one run.
type Report struct {
	Outcome          Outcome
	CannotMake       []DishAlert
	LowStock         []DishAlert
	Expiring         []ItemAlert
	Surplus          []ItemAlert
	ExpiringSpecials []Special
	SurplusSpecials  []Special
	Notification     *model.Notification
}

func (r *Report) empty() bool {
	return len(r.CannotMake) == 0 && len(r.LowStock) == 0 && len(r.Expiring) == 0 && len(r.Surplus) == 0
}

// MenuAnalyzer produces the daily operations brief.
type MenuAnalyzer struct {
	dishes        repository.DishRepository
	inventory     repository.InventoryRepository
	notifications service.NotificationService
	advisor       Advisor
	mailer        BriefMailer
	cfg           AnalyzerConfig
	now           func() time.Time

	// serialises scheduled and manual runs within this process
	mu sync.Mutex
}

// NewMenuAnalyzer wires the analyzer. mailer may be nil to skip email fan-out.
func NewMenuAnalyzer(
	dishes repository.DishRepository,
	inventory repository.InventoryRepository,
	notifications service.NotificationService,
	advisor Advisor,
	mailer BriefMailer,
	cfg AnalyzerConfig,
	now func() time.Time,
) *MenuAnalyzer {
	cfg.withDefaults()
	if now == nil {
		now = time.Now
	}
	return &MenuAnalyzer{
		dishes:        dishes,
		inventory:     inventory,
		notifications: notifications,
		advisor:       advisor,
		mailer:        mailer,
		cfg:           cfg,
		now:           now,
	}
}

// RunOnce performs one scan and, when warranted, publishes the brief.
func (a *MenuAnalyzer) RunOnce(ctx context.Context) (*Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dishes, err := a.dishes.ListWithIngredients(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu_analyzer: load dishes: %w", err)
	}
	items, err := a.inventory.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("menu_analyzer: load inventory: %w", err)
	}

	now := a.now()
	stock := costing.NewMapResolver(items)
	report := &Report{}

	for i := range dishes {
		a.classifyDish(&dishes[i], stock, report)
	}
	a.scanInventory(items, now, report)
	a.rankSpecials(dishes, stock, report)

	if report.empty() {
		report.Outcome = OutcomeNothingToReport
		log.Debug().Msg("menu_analyzer: nothing to report")
		return report, nil
	}

	sent, err := a.notifications.ExistsSince(ctx, BriefTitle, now.Add(-briefGuardWindow))
	if err != nil {
		return nil, fmt.Errorf("menu_analyzer: check previous brief: %w", err)
	}
	if sent {
		report.Outcome = OutcomeAlreadySent
		log.Debug().Msg("menu_analyzer: brief already sent in the last 24h")
		return report, nil
	}

	text := a.advisor.Generate(ctx, briefSystemPrompt, BuildBriefPrompt(report, a.cfg.TopSuggestions))
	n, err := a.notifications.Create(ctx, model.NotificationMarketingSuggestion, BriefTitle, text, nil)
	if err != nil {
		return nil, fmt.Errorf("menu_analyzer: save brief: %w", err)
	}
	report.Notification = n
	report.Outcome = OutcomePublished

	log.Info().
		Int("cannot_make", len(report.CannotMake)).
		Int("low_stock", len(report.LowStock)).
		Int("expiring", len(report.Expiring)).
		Int("surplus", len(report.Surplus)).
		Str("notification_id", n.ID.String()).
		Msg("menu_analyzer: brief published")

	a.mailBrief(ctx, text)
	return report, nil
}

func (a *MenuAnalyzer) mailBrief(ctx context.Context, text string) {
	if a.mailer == nil || len(a.cfg.Recipients) == 0 {
		return
	}
	err := a.mailer.EnqueueEmail(ctx, EmailJobPayload{To: a.cfg.Recipients, Subject: BriefTitle, Body: text})
	if err != nil {
		log.Warn().Err(err).Msg("menu_analyzer: failed to enqueue brief email")
	}
}

// classifyDish walks the recipe in order and stops at the first ingredient
// that makes the dish impossible.
func (a *MenuAnalyzer) classifyDish(d *model.Dish, stock costing.MapResolver, r *Report) {
	if len(d.Recipe) == 0 {
		return
	}

	minServings := math.MaxInt
	scarcest := ""
	for _, line := range d.Recipe {
		name := line.IngredientName
		if line.InventoryItem == nil {
			r.CannotMake = append(r.CannotMake, DishAlert{DishID: d.ID, Dish: d.Name, Ingredient: name, Reason: name + " missing from DB"})
			return
		}
		if name == "" {
			name = line.InventoryItem.Name
		}
		item, ok := stock.Ingredient(line.InventoryItemID)
		if !ok {
			r.CannotMake = append(r.CannotMake, DishAlert{DishID: d.ID, Dish: d.Name, Ingredient: name, Reason: name + " out of stock"})
			return
		}
		if line.QuantityRequired <= 0 {
			r.CannotMake = append(r.CannotMake, DishAlert{DishID: d.ID, Dish: d.Name, Ingredient: name, Reason: name + " has an invalid recipe quantity"})
			return
		}
		onHand, err := units.Convert(item.Quantity, item.Unit, line.Unit)
		if err != nil {
			r.CannotMake = append(r.CannotMake, DishAlert{DishID: d.ID, Dish: d.Name, Ingredient: name, Reason: name + " unit mismatch"})
			return
		}
		servings := possibleServings(onHand, line.QuantityRequired)
		if servings < 1 {
			r.CannotMake = append(r.CannotMake, DishAlert{DishID: d.ID, Dish: d.Name, Ingredient: name, Reason: "Out of " + name})
			return
		}
		if servings < minServings {
			minServings = servings
			scarcest = name
		}
	}

	if minServings < a.cfg.LowStockThreshold {
		r.LowStock = append(r.LowStock, DishAlert{DishID: d.ID, Dish: d.Name, Ingredient: scarcest, Servings: minServings})
	}
}

// possibleServings floors onHand/need, absorbing float noise such as 2.0/0.4
// with the same slack the order path allows.
func possibleServings(onHand, need float64) int {
	return int(math.Floor(onHand/need + units.Epsilon))
}

func (a *MenuAnalyzer) scanInventory(items []model.InventoryItem, now time.Time, r *Report) {
	window := float64(a.cfg.ExpiryWindowDays)
	for i := range items {
		it := &items[i]
		if exp, ok := it.ExpiresAt(); ok {
			days := exp.Sub(now).Hours() / 24
			if days > 0 && days <= window {
				r.Expiring = append(r.Expiring, ItemAlert{ID: it.ID, Name: it.Name, DaysRemaining: int(math.Ceil(days)), Quantity: it.Quantity, Unit: it.Unit})
			}
		}
		if it.Quantity > a.cfg.HighStockThreshold {
			r.Surplus = append(r.Surplus, ItemAlert{ID: it.ID, Name: it.Name, Quantity: it.Quantity, Unit: it.Unit})
		}
	}
}

// rankSpecials costs every dish that uses an expiring or surplus ingredient
// and keeps the best margins per category. Dishes with incomplete cost data
// are dropped.
func (a *MenuAnalyzer) rankSpecials(dishes []model.Dish, stock costing.MapResolver, r *Report) {
	if len(r.Expiring) == 0 && len(r.Surplus) == 0 {
		return
	}
	expiring := idSet(r.Expiring)
	surplus := idSet(r.Surplus)

	for i := range dishes {
		d := &dishes[i]
		usesExpiring, usesSurplus := false, false
		for _, line := range d.Recipe {
			if line.InventoryItem == nil {
				continue
			}
			usesExpiring = usesExpiring || expiring[line.InventoryItemID]
			usesSurplus = usesSurplus || surplus[line.InventoryItemID]
		}
		if !usesExpiring && !usesSurplus {
			continue
		}

		res := costing.Calculate(d, stock)
		if res.MissingCostData {
			continue
		}
		s := Special{DishID: d.ID, Dish: d.Name, Margin: res.ProfitMargin.Round(0)}
		if usesExpiring {
			r.ExpiringSpecials = append(r.ExpiringSpecials, s)
		}
		if usesSurplus {
			r.SurplusSpecials = append(r.SurplusSpecials, s)
		}
	}

	sortSpecials(r.ExpiringSpecials)
	sortSpecials(r.SurplusSpecials)
	r.ExpiringSpecials = top(r.ExpiringSpecials, a.cfg.TopSuggestions)
	r.SurplusSpecials = top(r.SurplusSpecials, a.cfg.TopSuggestions)
}

func idSet(alerts []ItemAlert) map[uuid.UUID]bool {
	m := make(map[uuid.UUID]bool, len(alerts))
	for _, a := range alerts {
		m[a.ID] = true
	}
	return m
}

func sortSpecials(s []Special) {
	sort.SliceStable(s, func(i, j int) bool {
		if c := s[i].Margin.Cmp(s[j].Margin); c != 0 {
			return c > 0
		}
		return s[i].Dish < s[j].Dish
	})
}

func top(s []Special, n int) []Special {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// BuildBriefPrompt renders the findings into the user prompt sent to the advisor.
func BuildBriefPrompt(r *Report, topN int) string {
	var b strings.Builder
	b.WriteString("Report Data:\n")
	fmt.Fprintf(&b, "- CANNOT MAKE: %s\n", joinOrNone(r.CannotMake, DishAlert.String))
	fmt.Fprintf(&b, "- LOW STOCK: %s\n", joinOrNone(r.LowStock, DishAlert.String))
	fmt.Fprintf(&b, "- EXPIRING: %s\n", joinOrNone(r.Expiring, func(i ItemAlert) string {
		return fmt.Sprintf("%s (%dd)", i.Name, i.DaysRemaining)
	}))
	fmt.Fprintf(&b, "- PROFITABLE EXPIRING DISHES: %s\n", joinOrNone(top(r.ExpiringSpecials, topN), Special.String))
	fmt.Fprintf(&b, "- SURPLUS: %s\n", joinOrNone(r.Surplus, func(i ItemAlert) string {
		return fmt.Sprintf("%s (%s %s)", i.Name, decimal.NewFromFloat(i.Quantity).String(), i.Unit)
	}))
	fmt.Fprintf(&b, "- PROFITABLE SURPLUS DISHES: %s", joinOrNone(top(r.SurplusSpecials, topN), Special.String))
	return b.String()
}

func joinOrNone[T any](xs []T, f func(T) string) string {
	if len(xs) == 0 {
		return "None"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = f(x)
	}
	return strings.Join(parts, ", ")
}
