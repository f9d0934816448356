package catalog

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
)

type algorithmRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"not null"`
	Type        string `gorm:"not null;size:16"`
	HP          int    `gorm:"column:hp;not null"`
	Attack      int    `gorm:"not null"`
	Defense     int    `gorm:"not null"`
	Speed       int    `gorm:"not null"`
	Description string
}

func (algorithmRow) TableName() string { return "algorithms" }

func rowFromTemplate(t engine.Template) algorithmRow {
	return algorithmRow{
		ID:          t.ID,
		Name:        t.Name,
		Type:        string(t.Type),
		HP:          t.Stats.HP,
		Attack:      t.Stats.Attack,
		Defense:     t.Stats.Defense,
		Speed:       t.Stats.Speed,
		Description: t.Description,
	}
}

func (r algorithmRow) template() engine.Template {
	return engine.Template{
		ID:          r.ID,
		Name:        r.Name,
		Type:        engine.Type(r.Type),
		Description: r.Description,
		Stats:       engine.Stats{HP: r.HP, Attack: r.Attack, Defense: r.Defense, Speed: r.Speed},
	}
}

// Store keeps the roster in SQL. Production runs on postgres; tests use sqlite.
type Store struct {
	db *gorm.DB
}

func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("catalog: opening postgres: %w", err)
	}
	return db, nil
}

// NewStore migrates the algorithms table on db.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&algorithmRow{}); err != nil {
		return nil, fmt.Errorf("catalog: migrating: %w", err)
	}
	return &Store{db: db}, nil
}

// Seed upserts templates by id. Existing rows take the new stats.
func (s *Store) Seed(ctx context.Context, templates []engine.Template) error {
	if err := Validate(templates); err != nil {
		return err
	}
	rows := make([]algorithmRow, 0, len(templates))
	for _, t := range templates {
		rows = append(rows, rowFromTemplate(t))
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("catalog: seeding: %w", err)
	}
	return nil
}

// Templates lists the stored roster ordered by id.
func (s *Store) Templates(ctx context.Context) ([]engine.Template, error) {
	var rows []algorithmRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("catalog: listing: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyRoster
	}
	out := make([]engine.Template, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.template())
	}
	return out, nil
}
