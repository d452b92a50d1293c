package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	"hussiny/internal/domain/search"
)

// searchRow is the common shape every entity query projects into.
type searchRow struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Subtitle    string    `db:"subtitle"`
	Description string    `db:"description"`
	Timestamp   time.Time `db:"ts"`
}

// entitySource adapts one LIKE query to search.Source. The query must take
// four args: three LIKE patterns and the limit.
type entitySource struct {
	txManager *TxManager
	kind      search.Kind
	query     string
}

// Kind implements search.Source.
func (s *entitySource) Kind() search.Kind { return s.kind }

// Search implements search.Source.
func (s *entitySource) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	like := "%" + query + "%"

	var rows []searchRow
	if err := sqlscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, s.query, like, like, like, limit); err != nil {
		return nil, fmt.Errorf("search %s: %w", s.kind, err)
	}

	results := make([]search.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, search.Result{
			Kind:        s.kind,
			ID:          row.ID,
			Title:       row.Title,
			Subtitle:    row.Subtitle,
			Description: row.Description,
			Timestamp:   row.Timestamp,
		})
	}
	return results, nil
}

// NewSearchSources builds the five entity sources behind the global search
// box.
func NewSearchSources(txManager *TxManager) []search.Source {
	return []search.Source{
		&entitySource{
			txManager: txManager,
			kind:      search.KindProduct,
			query: `
				SELECT id, name AS title, sku AS subtitle, description, created_at AS ts
				FROM products
				WHERE active = 1 AND (name LIKE ? OR sku LIKE ? OR barcode LIKE ?)
				ORDER BY created_at DESC
				LIMIT ?`,
		},
		&entitySource{
			txManager: txManager,
			kind:      search.KindCustomer,
			query: `
				SELECT id, name AS title, phone AS subtitle, notes AS description, created_at AS ts
				FROM customers
				WHERE name LIKE ? OR phone LIKE ? OR address LIKE ?
				ORDER BY created_at DESC
				LIMIT ?`,
		},
		&entitySource{
			txManager: txManager,
			kind:      search.KindSale,
			query: `
				SELECT id, invoice_number AS title,
					CAST(total AS TEXT) AS subtitle, note AS description, created_at AS ts
				FROM sales
				WHERE invoice_number LIKE ? OR note LIKE ? OR CAST(total AS TEXT) LIKE ?
				ORDER BY created_at DESC
				LIMIT ?`,
		},
		&entitySource{
			txManager: txManager,
			kind:      search.KindRepair,
			query: `
				SELECT id, ticket_number AS title, customer_name AS subtitle,
					device_type || ' ' || device_model AS description, created_at AS ts
				FROM repairs
				WHERE ticket_number LIKE ? OR customer_name LIKE ? OR device_type LIKE ?
				ORDER BY created_at DESC
				LIMIT ?`,
		},
		&entitySource{
			txManager: txManager,
			kind:      search.KindTransfer,
			query: `
				SELECT id, reference AS title, customer_name AS subtitle, note AS description, created_at AS ts
				FROM transfers
				WHERE reference LIKE ? OR customer_name LIKE ? OR wallet_number LIKE ?
				ORDER BY created_at DESC
				LIMIT ?`,
		},
	}
}
