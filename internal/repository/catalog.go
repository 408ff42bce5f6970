package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/SGK112/Newcountertops/internal/model"
)

// CatalogFilter задаёт фильтры, сортировку и пагинацию каталога столешниц.
type CatalogFilter struct {
	Material      string
	Finish        string
	Style         string
	Search        string
	PriceMinCents int64
	PriceMaxCents int64
	Page          int
	Limit         int
	SortBy        string
	SortDesc      bool
}

const countertopColumns = `id, slug, name, material, description,
	price_min_cents, price_max_cents, finishes, colors, styles, views, created_at`

// допустимые колонки сортировки каталога; всё остальное сводится к created_at
var catalogSortColumns = map[string]string{
	"createdAt": "created_at",
	"name":      "name",
	"price":     "price_min_cents",
	"views":     "views",
}

// ListCountertops возвращает страницу каталога и общее количество подходящих позиций.
func (r *PostgresRepository) ListCountertops(ctx context.Context, filter CatalogFilter) ([]model.Countertop, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 12
	}
	offset := (filter.Page - 1) * filter.Limit

	var conds []string
	var args []any

	addArg := func(v any) int {
		args = append(args, v)
		return len(args)
	}

	if filter.Material != "" {
		conds = append(conds, fmt.Sprintf("material = $%d", addArg(filter.Material)))
	}
	if filter.Finish != "" {
		conds = append(conds, fmt.Sprintf("$%d = ANY(finishes)", addArg(filter.Finish)))
	}
	if filter.Style != "" {
		conds = append(conds, fmt.Sprintf("$%d = ANY(styles)", addArg(filter.Style)))
	}
	if filter.Search != "" {
		n := addArg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", n, n))
	}
	if filter.PriceMinCents > 0 {
		conds = append(conds, fmt.Sprintf("price_min_cents >= $%d", addArg(filter.PriceMinCents)))
	}
	if filter.PriceMaxCents > 0 {
		conds = append(conds, fmt.Sprintf("price_max_cents <= $%d", addArg(filter.PriceMaxCents)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM countertops `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count countertops: %w", err)
	}

	sortCol, ok := catalogSortColumns[filter.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM countertops %s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		countertopColumns, where, sortCol, direction, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select countertops: %w", err)
	}
	defer rows.Close()

	var res []model.Countertop
	for rows.Next() {
		c, err := scanCountertop(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan countertop: %w", err)
		}
		res = append(res, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return res, total, nil
}

// GetCountertopBySlug возвращает позицию каталога и увеличивает счётчик просмотров.
func (r *PostgresRepository) GetCountertopBySlug(ctx context.Context, slug string) (*model.Countertop, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE countertops SET views = views + 1 WHERE slug = $1
		 RETURNING `+countertopColumns,
		slug,
	)

	c, err := scanCountertop(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCountertopNotFound
		}
		return nil, fmt.Errorf("get countertop: %w", err)
	}

	return c, nil
}

// DistinctMaterials возвращает список материалов, представленных в каталоге.
func (r *PostgresRepository) DistinctMaterials(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT material FROM countertops ORDER BY material`)
	if err != nil {
		return nil, fmt.Errorf("select materials: %w", err)
	}
	defer rows.Close()

	var res []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		res = append(res, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpsertCountertop вставляет или обновляет позицию каталога по slug.
// Используется синхронизацией с фидом производителя.
func (r *PostgresRepository) UpsertCountertop(ctx context.Context, c *model.Countertop) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO countertops (slug, name, material, description,
		                          price_min_cents, price_max_cents, finishes, colors, styles)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (slug) DO UPDATE SET
		     name = EXCLUDED.name,
		     material = EXCLUDED.material,
		     description = EXCLUDED.description,
		     price_min_cents = EXCLUDED.price_min_cents,
		     price_max_cents = EXCLUDED.price_max_cents,
		     finishes = EXCLUDED.finishes,
		     colors = EXCLUDED.colors,
		     styles = EXCLUDED.styles`,
		c.Slug, c.Name, c.Material, c.Description,
		c.PriceMinCents, c.PriceMaxCents, c.Finishes, c.Colors, c.Styles,
	)
	if err != nil {
		return fmt.Errorf("upsert countertop: %w", err)
	}

	return nil
}

func scanCountertop(row rowScanner) (*model.Countertop, error) {
	var c model.Countertop
	err := row.Scan(
		&c.ID, &c.Slug, &c.Name, &c.Material, &c.Description,
		&c.PriceMinCents, &c.PriceMaxCents, &c.Finishes, &c.Colors, &c.Styles,
		&c.Views, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
