package seed

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/pageza/recipebox/backend/internal/legacy"
)

// Dangling counts rows whose foreign key points at a missing row.
type Dangling struct {
	Table      string `json:"table"`
	Column     string `json:"column"`
	References string `json:"references"`
	Rows       int64  `json:"rows"`
}

// Report is the state of the target tables after a run.
type Report struct {
	Counts             map[string]int64 `json:"counts"`
	Dangling           []Dangling       `json:"dangling,omitempty"`
	UnorderedCookbooks []string         `json:"unordered_cookbooks,omitempty"`
}

// OK reports whether every reference resolves and every cookbook is numbered 1..N.
func (r *Report) OK() bool {
	return len(r.Dangling) == 0 && len(r.UnorderedCookbooks) == 0
}

// Verify counts the rows of every declared table, looks for dangling foreign
// keys and checks cookbook ordering.
func Verify(ctx context.Context, db *gorm.DB) (*Report, error) {
	db = db.WithContext(ctx)
	report := &Report{Counts: map[string]int64{}}

	tables := DefaultTables()
	for _, t := range tables {
		var n int64
		if err := db.Table(t.Name).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count %s: %w", t.Name, err)
		}
		report.Counts[t.Name] = n
	}

	for _, t := range tables {
		for _, fk := range t.ForeignKeys {
			var n int64
			err := db.Table(t.Name+" AS c").
				Joins(fmt.Sprintf("LEFT JOIN %s AS p ON p.id = c.%s", fk.References, fk.Column)).
				Where(fmt.Sprintf("c.%s IS NOT NULL AND p.id IS NULL", fk.Column)).
				Count(&n).Error
			if err != nil {
				return nil, fmt.Errorf("check %s.%s: %w", t.Name, fk.Column, err)
			}
			if n > 0 {
				report.Dangling = append(report.Dangling, Dangling{
					Table:      t.Name,
					Column:     fk.Column,
					References: fk.References,
					Rows:       n,
				})
			}
		}
	}

	unordered, err := unorderedCookbooks(db)
	if err != nil {
		return nil, err
	}
	report.UnorderedCookbooks = unordered
	return report, nil
}

func unorderedCookbooks(db *gorm.DB) ([]string, error) {
	var groups []struct {
		CookbookID string
		N          int64
		Lo         int64
		Hi         int64
		Uniq       int64
	}
	err := db.Table(legacy.TableCookbookRecipes).
		Select(`cookbook_id, COUNT(*) AS n, MIN("order") AS lo, MAX("order") AS hi, COUNT(DISTINCT "order") AS uniq`).
		Group("cookbook_id").
		Scan(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("check cookbook order: %w", err)
	}

	var ids []string
	for _, g := range groups {
		if g.Lo != 1 || g.Hi != g.N || g.Uniq != g.N {
			ids = append(ids, g.CookbookID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
