package postgres

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/qualifica/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Catalogs implements ports.CatalogSource on the qualification_questions table.
type Catalogs struct {
	pool *pgxpool.Pool
}

// NewCatalogs creates a catalog source on pool.
func NewCatalogs(pool *pgxpool.Pool) *Catalogs {
	return &Catalogs{pool: pool}
}

// questionRow mirrors qualification_questions; nullable columns are pointers.
type questionRow struct {
	ID            int64
	QuestionOrder int
	Text          string
	HotCriteria   string
	WarmCriteria  string
	ColdCriteria  string
	Weight        *int
	HotThreshold  *int
	WarmThreshold *int
}

func (r questionRow) toDomain() domain.Question {
	q := domain.Question{
		ID:            strconv.FormatInt(r.ID, 10),
		Order:         r.QuestionOrder,
		Text:          r.Text,
		HotCriteria:   r.HotCriteria,
		WarmCriteria:  r.WarmCriteria,
		ColdCriteria:  r.ColdCriteria,
		HotThreshold:  r.HotThreshold,
		WarmThreshold: r.WarmThreshold,
	}
	if r.Weight != nil {
		q.Weight = *r.Weight
	}
	return q
}

// Catalog returns the tenant's questions.
func (c *Catalogs) Catalog(ctx context.Context, tenantID string) (domain.Catalog, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT id, question_order, text, hot_criteria, warm_criteria, cold_criteria,
		       weight, hot_threshold, warm_threshold
		FROM qualification_questions
		WHERE tenant_id = $1
		ORDER BY question_order, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[questionRow])
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tenant %q: %w", tenantID, domain.ErrCatalogNotFound)
	}

	catalog := make(domain.Catalog, 0, len(records))
	for _, r := range records {
		catalog = append(catalog, r.toDomain())
	}
	return catalog, nil
}

// Put replaces the tenant's catalog in one transaction, bulk-loading rows with COPY.
func (c *Catalogs) Put(ctx context.Context, tenantID string, catalog domain.Catalog) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM qualification_questions WHERE tenant_id = $1", tenantID); err != nil {
		return fmt.Errorf("clear catalog: %w", err)
	}

	rows := make([][]any, 0, len(catalog))
	for _, q := range catalog {
		var weight *int
		if q.Weight != 0 {
			weight = &q.Weight
		}
		rows = append(rows, []any{
			tenantID, q.Order, q.Text, q.HotCriteria, q.WarmCriteria, q.ColdCriteria,
			weight, q.HotThreshold, q.WarmThreshold,
		})
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"qualification_questions"},
		[]string{"tenant_id", "question_order", "text", "hot_criteria", "warm_criteria", "cold_criteria",
			"weight", "hot_threshold", "warm_threshold"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy questions: %w", err)
	}

	return tx.Commit(ctx)
}
