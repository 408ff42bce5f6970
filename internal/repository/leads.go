package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SGK112/Newcountertops/internal/model"
)

func materialsToStrings(materials []model.Material) []string {
	res := make([]string, 0, len(materials))
	for _, m := range materials {
		res = append(res, string(m))
	}
	return res
}

func stringsToMaterials(values []string) []model.Material {
	res := make([]model.Material, 0, len(values))
	for _, v := range values {
		res = append(res, model.Material(v))
	}
	return res
}

// CreateLead сохраняет заявку вместе с назначениями подрядчикам в одной транзакции.
// Возвращает идентификатор созданной заявки.
func (r *PostgresRepository) CreateLead(ctx context.Context, lead *model.Lead) (int64, error) {
	var id int64

	err := r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`INSERT INTO leads (first_name, last_name, email, phone,
			                    project_type, project_size, estimated_budget, timeline,
			                    street, city, state, zip_code,
			                    materials, notes, status, priority, score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			 RETURNING id`,
			lead.FirstName, lead.LastName, lead.Email, lead.Phone,
			string(lead.ProjectType), string(lead.ProjectSize), string(lead.EstimatedBudget), string(lead.Timeline),
			lead.Address.Street, lead.Address.City, lead.Address.State, lead.Address.ZipCode,
			materialsToStrings(lead.Materials), lead.Notes, string(lead.Status), string(lead.Priority), lead.Score,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert lead: %w", err)
		}

		for _, a := range lead.Assignments {
			_, err = tx.Exec(ctx,
				`INSERT INTO lead_assignments (lead_id, fabricator_id, price_cents, status)
				 VALUES ($1, $2, $3, $4)
				 ON CONFLICT (lead_id, fabricator_id) DO NOTHING`,
				id, a.FabricatorID, nilIfZero(a.PriceCents), string(a.Status),
			)
			if err != nil {
				return fmt.Errorf("insert assignment: %w", err)
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

func nilIfZero(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

// GetLead возвращает заявку вместе со списком назначений.
func (r *PostgresRepository) GetLead(ctx context.Context, id int64) (*model.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, phone,
		        project_type, project_size, estimated_budget, timeline,
		        street, city, state, zip_code,
		        materials, notes, status, priority, score,
		        sold_to, sale_price_cents, sold_at, created_at
		 FROM leads WHERE id = $1`,
		id,
	)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}

	assignments, err := r.getAssignments(ctx, id)
	if err != nil {
		return nil, err
	}
	lead.Assignments = assignments

	return lead, nil
}

func (r *PostgresRepository) getAssignments(ctx context.Context, leadID int64) ([]model.Assignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT fabricator_id, assigned_at, price_cents, status
		 FROM lead_assignments
		 WHERE lead_id = $1
		 ORDER BY assigned_at`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("select assignments: %w", err)
	}
	defer rows.Close()

	var res []model.Assignment
	for rows.Next() {
		var (
			a          model.Assignment
			priceCents *int64
			status     string
		)
		if err := rows.Scan(&a.FabricatorID, &a.AssignedAt, &priceCents, &status); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if priceCents != nil {
			a.PriceCents = *priceCents
		}
		a.Status = model.AssignmentStatus(status)
		res = append(res, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// LeadFilter задаёт фильтр и пагинацию для списка заявок.
type LeadFilter struct {
	Status model.LeadStatus
	Page   int
	Limit  int
}

// ListLeads возвращает страницу заявок и общее количество подходящих записей.
func (r *PostgresRepository) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, int, error) {
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
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	query := `SELECT id, first_name, last_name, email, phone,
	                 project_type, project_size, estimated_budget, timeline,
	                 street, city, state, zip_code,
	                 materials, notes, status, priority, score,
	                 sold_to, sale_price_cents, sold_at, created_at
	          FROM leads ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select leads: %w", err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	return leads, total, nil
}

// UpdateLeadStatus обновляет статус и приоритет заявки. При первом переходе в
// статус won фиксируется момент продажи; повторные обновления sold_at не меняют.
func (r *PostgresRepository) UpdateLeadStatus(ctx context.Context, id int64, status model.LeadStatus, priority model.Priority) error {
	var tag string
	if status == model.LeadStatusWon {
		tag = `UPDATE leads SET status = $2, priority = $3, sold_at = COALESCE(sold_at, now()) WHERE id = $1`
	} else {
		tag = `UPDATE leads SET status = $2, priority = $3 WHERE id = $1`
	}

	cmdTag, err := r.pool.Exec(ctx, tag, id, string(status), string(priority))
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}

	return nil
}

// MarkLeadSold отмечает продажу заявки подрядчику с указанной ценой.
// sold_at устанавливается только при первом переходе в won.
func (r *PostgresRepository) MarkLeadSold(ctx context.Context, id, fabricatorID, salePriceCents int64) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE leads
		 SET status = $2, sold_to = $3, sale_price_cents = $4, sold_at = COALESCE(sold_at, now())
		 WHERE id = $1`,
		id, string(model.LeadStatusWon), fabricatorID, salePriceCents,
	)
	if err != nil {
		return fmt.Errorf("mark lead sold: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*model.Lead, error) {
	var (
		lead           model.Lead
		projectType    string
		projectSize    string
		budget         string
		timeline       string
		materials      []string
		status         string
		priority       string
		soldTo         *int64
		salePriceCents *int64
		soldAt         *time.Time
	)

	err := row.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&projectType, &projectSize, &budget, &timeline,
		&lead.Address.Street, &lead.Address.City, &lead.Address.State, &lead.Address.ZipCode,
		&materials, &lead.Notes, &status, &priority, &lead.Score,
		&soldTo, &salePriceCents, &soldAt, &lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.ProjectType = model.ProjectType(projectType)
	lead.ProjectSize = model.ProjectSize(projectSize)
	lead.EstimatedBudget = model.Budget(budget)
	lead.Timeline = model.Timeline(timeline)
	lead.Materials = stringsToMaterials(materials)
	lead.Status = model.LeadStatus(status)
	lead.Priority = model.Priority(priority)
	lead.SoldTo = soldTo
	lead.SalePriceCents = salePriceCents
	lead.SoldAt = soldAt

	return &lead, nil
}
