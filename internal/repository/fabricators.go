package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/SGK112/Newcountertops/internal/matching"
	"github.com/SGK112/Newcountertops/internal/model"
)

// CreateFabricator сохраняет подрядчика вместе с зонами обслуживания в одной транзакции.
func (r *PostgresRepository) CreateFabricator(ctx context.Context, f *model.Fabricator) (int64, error) {
	var id int64

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`INSERT INTO fabricators (company_name, business_type, email, phone,
			                          street, city, state, zip_code,
			                          materials, services, status, subscription_status)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING id`,
			f.CompanyName, string(f.BusinessType), f.Email, f.Phone,
			f.Address.Street, f.Address.City, f.Address.State, f.Address.ZipCode,
			materialsToStrings(f.Materials), f.Services, string(f.Status), string(f.SubscriptionStatus),
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrFabricatorExists, f.Email)
			}
			return fmt.Errorf("insert fabricator: %w", err)
		}

		for _, area := range f.ServiceAreas {
			_, err = tx.Exec(ctx,
				`INSERT INTO service_areas (fabricator_id, zip_code, city, state, radius_miles)
				 VALUES ($1, $2, $3, $4, $5)`,
				id, area.ZipCode, area.City, area.State, area.RadiusMiles,
			)
			if err != nil {
				return fmt.Errorf("insert service area: %w", err)
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

const fabricatorColumns = `id, company_name, business_type, email, phone,
	street, city, state, zip_code,
	materials, services, status, subscription_status,
	rating_average, rating_count, created_at`

// GetFabricator возвращает подрядчика вместе с зонами обслуживания.
func (r *PostgresRepository) GetFabricator(ctx context.Context, id int64) (*model.Fabricator, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+fabricatorColumns+` FROM fabricators WHERE id = $1`, id,
	)

	f, err := scanFabricator(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFabricatorNotFound
		}
		return nil, fmt.Errorf("get fabricator: %w", err)
	}

	areas, err := r.getServiceAreas(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	f.ServiceAreas = areas[id]

	return f, nil
}

// FindFabricatorsByZipOrService возвращает кандидатов для подбора: подрядчиков,
// чей собственный zip-код совпадает с запрошенным, либо имеющих зону обслуживания
// с этим zip-кодом или с заполненными городом и штатом. Окончательный отбор и
// ранжирование выполняет пакет matching.
func (r *PostgresRepository) FindFabricatorsByZipOrService(ctx context.Context, zipCode string) ([]model.Fabricator, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT f.id, f.company_name, f.business_type, f.email, f.phone,
		        f.street, f.city, f.state, f.zip_code,
		        f.materials, f.services, f.status, f.subscription_status,
		        f.rating_average, f.rating_count, f.created_at
		 FROM fabricators f
		 LEFT JOIN service_areas sa ON sa.fabricator_id = f.id
		 WHERE f.zip_code = $1
		    OR sa.zip_code = $1
		    OR (sa.city <> '' AND sa.state <> '')`,
		zipCode,
	)
	if err != nil {
		return nil, fmt.Errorf("select fabricators: %w", err)
	}
	defer rows.Close()

	var fabricators []model.Fabricator
	var ids []int64
	for rows.Next() {
		f, err := scanFabricator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fabricator: %w", err)
		}
		fabricators = append(fabricators, *f)
		ids = append(ids, f.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	if len(fabricators) == 0 {
		return nil, nil
	}

	areas, err := r.getServiceAreas(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range fabricators {
		fabricators[i].ServiceAreas = areas[fabricators[i].ID]
	}

	return fabricators, nil
}

func (r *PostgresRepository) getServiceAreas(ctx context.Context, fabricatorIDs []int64) (map[int64][]model.ServiceArea, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT fabricator_id, zip_code, city, state, radius_miles
		 FROM service_areas
		 WHERE fabricator_id = ANY($1)
		 ORDER BY id`,
		fabricatorIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("select service areas: %w", err)
	}
	defer rows.Close()

	res := make(map[int64][]model.ServiceArea)
	for rows.Next() {
		var fabricatorID int64
		var area model.ServiceArea
		if err := rows.Scan(&fabricatorID, &area.ZipCode, &area.City, &area.State, &area.RadiusMiles); err != nil {
			return nil, fmt.Errorf("scan service area: %w", err)
		}
		res[fabricatorID] = append(res[fabricatorID], area)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// FabricatorFilter задаёт фильтр и пагинацию для списка подрядчиков.
type FabricatorFilter struct {
	Status model.FabricatorStatus
	Page   int
	Limit  int
}

// ListFabricators возвращает страницу подрядчиков и общее количество подходящих записей.
func (r *PostgresRepository) ListFabricators(ctx context.Context, filter FabricatorFilter) ([]model.Fabricator, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit

	where := ``
	args := []any{}
	if filter.Status != "" {
		where = `WHERE status = $1`
		args = append(args, string(filter.Status))
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fabricators `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count fabricators: %w", err)
	}

	query := `SELECT ` + fabricatorColumns + ` FROM fabricators ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select fabricators: %w", err)
	}
	defer rows.Close()

	var fabricators []model.Fabricator
	for rows.Next() {
		f, err := scanFabricator(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan fabricator: %w", err)
		}
		fabricators = append(fabricators, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return fabricators, total, nil
}

// UpdateFabricatorStatus обновляет статус аккаунта и подписки подрядчика.
func (r *PostgresRepository) UpdateFabricatorStatus(ctx context.Context, id int64, status model.FabricatorStatus, subscription model.SubscriptionStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE fabricators SET status = $2, subscription_status = $3 WHERE id = $1`,
		id, string(status), string(subscription),
	)
	if err != nil {
		return fmt.Errorf("update fabricator: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrFabricatorNotFound
	}

	return nil
}

// AddReview добавляет отзыв и атомарно пересчитывает агрегат рейтинга.
// Строка подрядчика блокируется на время транзакции, поэтому параллельные
// отзывы на одного подрядчика сериализуются. Агрегат — всегда свёртка полного
// списка отзывов, а не инкрементальная арифметика.
func (r *PostgresRepository) AddReview(ctx context.Context, review *model.Review) (model.Rating, error) {
	var rating model.Rating

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		var dummy int
		err = tx.QueryRow(ctx, `SELECT 1 FROM fabricators WHERE id = $1 FOR UPDATE`, review.FabricatorID).Scan(&dummy)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrFabricatorNotFound
			}
			return fmt.Errorf("lock fabricator for update: %w", err)
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO reviews (fabricator_id, customer_name, rating, comment)
			 VALUES ($1, $2, $3, $4)`,
			review.FabricatorID, review.CustomerName, review.Rating, review.Comment,
		)
		if err != nil {
			return fmt.Errorf("insert review: %w", err)
		}

		rows, err := tx.Query(ctx,
			`SELECT rating FROM reviews WHERE fabricator_id = $1`, review.FabricatorID,
		)
		if err != nil {
			return fmt.Errorf("select reviews: %w", err)
		}

		var reviews []model.Review
		for rows.Next() {
			var rv model.Review
			if err := rows.Scan(&rv.Rating); err != nil {
				rows.Close()
				return fmt.Errorf("scan review: %w", err)
			}
			reviews = append(reviews, rv)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}

		rating = matching.RecomputeRating(reviews)

		_, err = tx.Exec(ctx,
			`UPDATE fabricators SET rating_average = $2, rating_count = $3 WHERE id = $1`,
			review.FabricatorID, rating.Average, rating.Count,
		)
		if err != nil {
			return fmt.Errorf("update rating: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		return nil
	})
	if err != nil {
		return model.Rating{}, err
	}

	return rating, nil
}

// GetReviews возвращает отзывы о подрядчике, новые первыми.
func (r *PostgresRepository) GetReviews(ctx context.Context, fabricatorID int64) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, fabricator_id, customer_name, rating, comment, created_at
		 FROM reviews
		 WHERE fabricator_id = $1
		 ORDER BY created_at DESC`,
		fabricatorID,
	)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	var res []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.FabricatorID, &rv.CustomerName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		res = append(res, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func scanFabricator(row rowScanner) (*model.Fabricator, error) {
	var (
		f            model.Fabricator
		businessType string
		materials    []string
		status       string
		subscription string
	)

	err := row.Scan(
		&f.ID, &f.CompanyName, &businessType, &f.Email, &f.Phone,
		&f.Address.Street, &f.Address.City, &f.Address.State, &f.Address.ZipCode,
		&materials, &f.Services, &status, &subscription,
		&f.Rating.Average, &f.Rating.Count, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.BusinessType = model.BusinessType(businessType)
	f.Materials = stringsToMaterials(materials)
	f.Status = model.FabricatorStatus(status)
	f.SubscriptionStatus = model.SubscriptionStatus(subscription)

	return &f, nil
}
