package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aretw0/qualifica/pkg/domain"
)

// Catalogs implements ports.CatalogSource on the questions table.
// A tenant without rows has no catalog.
type Catalogs struct {
	db *sql.DB
}

// NewCatalogs creates a catalog source on d.
func NewCatalogs(d *DB) *Catalogs {
	return &Catalogs{db: d.db}
}

// Catalog returns the tenant's questions in insertion order within each order value.
func (c *Catalogs) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, question_order, text, hot_criteria, warm_criteria, cold_criteria,
		       weight, hot_threshold, warm_threshold
		FROM questions
		WHERE tenant_id = ?
		ORDER BY question_order, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var catalog domain.Catalog
	for rows.Next() {
		var (
			q                 domain.Question
			id                int64
			weight, hot, warm sql.NullInt64
		)
		if err := rows.Scan(&id, &q.Order, &q.Text, &q.HotCriteria, &q.WarmCriteria, &q.ColdCriteria,
			&weight, &hot, &warm); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		q.ID = fmt.Sprintf("%d", id)
		q.Weight = int(weight.Int64)
		q.HotThreshold = nullableInt(hot)
		q.WarmThreshold = nullableInt(warm)
		catalog = append(catalog, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	if len(catalog) == 0 {
		return nil, fmt.Errorf("tenant %q: %w", tenantID, domain.ErrCatalogNotFound)
	}
	return catalog, nil
}

// Put replaces the tenant's catalog in one transaction.
func (c *Catalogs) Put(ctx context.Context, tenantID string, catalog domain.Catalog) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM questions WHERE tenant_id = ?", tenantID); err != nil {
		return fmt.Errorf("clearing catalog: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO questions (tenant_id, question_order, text, hot_criteria, warm_criteria, cold_criteria,
		                       weight, hot_threshold, warm_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range catalog {
		if _, err := stmt.ExecContext(ctx, tenantID, q.Order, q.Text, q.HotCriteria, q.WarmCriteria, q.ColdCriteria,
			nullWeight(q.Weight), q.HotThreshold, q.WarmThreshold); err != nil {
			return fmt.Errorf("inserting question %d: %w", i, err)
		}
	}

	return tx.Commit()
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return domain.IntPtr(int(v.Int64))
}

// nullWeight stores an absent weight as NULL.
func nullWeight(w int) any {
	if w == 0 {
		return nil
	}
	return w
}
