package services

import (
	"fmt"
	"log"

	"allowance-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BadgeCatalog holds the validated, active badge definitions plus an index
// from trigger kind to candidate badges, built once at load so dispatch never
// scans the full catalog per event.
type BadgeCatalog struct {
	byID      map[string]*models.BadgeDefinition
	byTrigger map[models.TriggerKind][]*models.BadgeDefinition
	ordered   []*models.BadgeDefinition
}

// LoadBadgeCatalog reads active definitions and validates each criteria
// descriptor. A malformed badge is excluded and logged; it never poisons the
// rest of the catalog.
func LoadBadgeCatalog(db *gorm.DB) (*BadgeCatalog, error) {
	var defs []models.BadgeDefinition
	if err := db.Where("active = ?", true).Order("sort_order ASC").Find(&defs).Error; err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	cat := &BadgeCatalog{
		byID:      make(map[string]*models.BadgeDefinition),
		byTrigger: make(map[models.TriggerKind][]*models.BadgeDefinition),
	}

	for i := range defs {
		def := &defs[i]
		if err := def.Criteria.Validate(); err != nil {
			log.Printf("⚠️ [CATALOG] excluding badge %s: %v", def.Code, err)
			continue
		}
		if err := validateTriggers(def); err != nil {
			log.Printf("⚠️ [CATALOG] excluding badge %s: %v", def.Code, err)
			continue
		}
		cat.byID[def.ID] = def
		cat.ordered = append(cat.ordered, def)
		for _, kind := range dedupeTriggers(def.Triggers) {
			cat.byTrigger[kind] = append(cat.byTrigger[kind], def)
		}
	}

	log.Printf("✅ Badge catalog loaded: %d active badges, %d trigger kinds indexed", len(cat.ordered), len(cat.byTrigger))
	return cat, nil
}

// validateTriggers enforces trigger-set rules the criteria struct alone can't
// see. Percentage badges must only fire at period close, otherwise a
// mid-period ratio would award spuriously.
func validateTriggers(def *models.BadgeDefinition) error {
	if len(def.Triggers) == 0 {
		return fmt.Errorf("badge has no trigger kinds")
	}
	if def.Criteria.Kind == models.CriteriaPercentageThreshold {
		for _, t := range def.Triggers {
			if t != models.TriggerPeriodClose {
				return fmt.Errorf("percentage badge has non-period-close trigger %q", t)
			}
		}
	}
	return nil
}

// dedupeTriggers keeps a badge from appearing twice in one trigger's candidate
// list, so a single event evaluates each badge at most once.
func dedupeTriggers(kinds []models.TriggerKind) []models.TriggerKind {
	seen := make(map[models.TriggerKind]bool, len(kinds))
	var out []models.TriggerKind
	for _, k := range kinds {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// CandidatesFor returns the badges whose trigger set contains the event kind.
func (c *BadgeCatalog) CandidatesFor(kind models.TriggerKind) []*models.BadgeDefinition {
	return c.byTrigger[kind]
}

// Badge looks up a definition by ID.
func (c *BadgeCatalog) Badge(id string) (*models.BadgeDefinition, bool) {
	def, ok := c.byID[id]
	return def, ok
}

// All returns every loaded definition in display order.
func (c *BadgeCatalog) All() []*models.BadgeDefinition {
	return c.ordered
}

// SeedDefaultBadges inserts the built-in badge catalog, keyed by code so
// re-seeding on boot is a no-op. Codes are slugged from names when empty.
func SeedDefaultBadges(db *gorm.DB) error {
	for _, def := range models.DefaultBadges {
		if def.Code == "" {
			def.Code = slug.Make(def.Name)
		}
		def.ID = uuid.NewString()
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&def)
		if res.Error != nil {
			return fmt.Errorf("failed to seed badge %s: %w", def.Code, res.Error)
		}
	}
	return nil
}

// SeedDefaultRewards inserts the built-in reward catalog, keyed by code.
func SeedDefaultRewards(db *gorm.DB) error {
	for _, item := range models.DefaultRewards {
		if item.Code == "" {
			item.Code = slug.Make(item.Name)
		}
		item.ID = uuid.NewString()
		item.Active = true
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&item)
		if res.Error != nil {
			return fmt.Errorf("failed to seed reward %s: %w", item.Code, res.Error)
		}
	}
	return nil
}
