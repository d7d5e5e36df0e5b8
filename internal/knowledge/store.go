// Package knowledge provides read-only access to a tenant's knowledge
// base: FAQ entries, the service/product catalog, stock availability,
// business hours documents, and the semantic index backing retrieval.
//
// The store never errors on missing data: a tenant with no FAQ rows gets
// an empty slice, not an error. Failures it does return are transport or
// query failures; adapters upstream map those to their local
// unavailable-source fallback so a single source can never abort a query.
//
// Store is safe for concurrent use by multiple goroutines.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// DB is the database capability Store needs. *pgxpool.Pool satisfies it;
// tests substitute a fake. Defined here, by the consumer, rather than
// exported from a driver package.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads tenant knowledge from PostgreSQL.
type Store struct {
	db     DB
	logger *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// FAQs returns up to limit FAQ entries for the tenant, in owner-defined
// position order.
func (s *Store) FAQs(ctx context.Context, tenantID string, limit int) ([]FAQ, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, question, answer, position
		FROM faq_entries
		WHERE tenant_id = $1
		ORDER BY position, id
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying faq entries: %w", err)
	}
	defer rows.Close()

	var faqs []FAQ
	for rows.Next() {
		var f FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.Position); err != nil {
			return nil, fmt.Errorf("scanning faq entry: %w", err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading faq entries: %w", err)
	}
	return faqs, nil
}

// MenuItems returns up to limit catalog lines for the tenant, in
// owner-defined position order.
func (s *Store) MenuItems(ctx context.Context, tenantID string, limit int) ([]MenuItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), COALESCE(price_yen, 0), position
		FROM menu_items
		WHERE tenant_id = $1
		ORDER BY position, id
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.PriceYen, &m.Position); err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading menu items: %w", err)
	}
	return items, nil
}

// SearchStock returns stock items whose name or note matches the term,
// capped at limit. An empty term matches nothing.
func (s *Store) SearchStock(ctx context.Context, tenantID, term string, limit int) ([]StockItem, error) {
	if term == "" {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(note, ''), COALESCE(status, '')
		FROM stock_items
		WHERE tenant_id = $1 AND (name ILIKE '%' || $2 || '%' OR note ILIKE '%' || $2 || '%')
		ORDER BY name, id
		LIMIT $3`, tenantID, term, limit)
	if err != nil {
		return nil, fmt.Errorf("searching stock: %w", err)
	}
	defer rows.Close()
	return s.scanStock(rows)
}

// ListStock returns an unranked snapshot of the tenant's stock, ordered
// by availability (in_stock → low → out → unset) and capped at limit.
func (s *Store) ListStock(ctx context.Context, tenantID string, limit int) ([]StockItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, COALESCE(note, ''), COALESCE(status, '')
		FROM stock_items
		WHERE tenant_id = $1
		ORDER BY CASE COALESCE(status, '')
			WHEN 'in_stock' THEN 0
			WHEN 'low' THEN 1
			WHEN 'out' THEN 2
			ELSE 3
		END, name, id
		LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing stock: %w", err)
	}
	defer rows.Close()
	return s.scanStock(rows)
}

func (s *Store) scanStock(rows pgx.Rows) ([]StockItem, error) {
	var items []StockItem
	for rows.Next() {
		var (
			item StockItem
			raw  string
		)
		if err := rows.Scan(&item.ID, &item.Name, &item.Note, &raw); err != nil {
			return nil, fmt.Errorf("scanning stock item: %w", err)
		}
		item.Status = ParseStockStatus(raw)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading stock items: %w", err)
	}
	return items, nil
}

// Hours returns the tenant's stored business-hours documents, newest
// first. Schema shape varies across document generations; callers
// normalize the raw payloads.
func (s *Store) Hours(ctx context.Context, tenantID string) ([]HoursDocument, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, payload, updated_at
		FROM business_hours
		WHERE tenant_id = $1
		ORDER BY updated_at DESC, id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying business hours: %w", err)
	}
	defer rows.Close()

	var docs []HoursDocument
	for rows.Next() {
		var d HoursDocument
		if err := rows.Scan(&d.ID, &d.Payload, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning hours document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading hours documents: %w", err)
	}
	return docs, nil
}

// SearchChunks performs vector similarity search over the tenant's
// semantic index. Similarity is cosine, mapped to [0,1] where 1 is an
// exact match. Results come back in similarity order; fusion and
// thresholding happen in the retriever.
func (s *Store) SearchChunks(ctx context.Context, tenantID string, embedding []float32, limit int) ([]Candidate, error) {
	vec := pgvector.NewVector(embedding)
	rows, err := s.db.Query(ctx, `
		SELECT id, content, 1 - (embedding <=> $2) AS similarity
		FROM knowledge_chunks
		WHERE tenant_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3`, tenantID, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("searching knowledge chunks: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.ID, &c.Content, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scanning knowledge chunk: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading knowledge chunks: %w", err)
	}

	s.logger.Debug("chunk search", "tenant", tenantID, "candidates", len(candidates))
	return candidates, nil
}
