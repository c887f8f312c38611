package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ProductRef is the catalog snapshot stored with a design.
type ProductRef struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Thumbnail *string         `json:"thumbnail,omitempty"`
	Stock     int             `json:"stock"`
}

// ProductItem binds a product to a design with purchase parameters.
type ProductItem struct {
	Product     ProductRef       `json:"product"`
	Quantity    int              `json:"quantity"`
	CustomPrice *decimal.Decimal `json:"customPrice,omitempty"`
	Notes       *string          `json:"notes,omitempty"`
}

type DesignRequest struct {
	DesignID    string        `json:"designId"`
	DesignTitle string        `json:"designTitle"`
	DesignImage string        `json:"designImage"`
	RequestedAt time.Time     `json:"requestedAt"`
	Notes       *string       `json:"notes,omitempty"`
	Products    []ProductItem `json:"products"`
}

// DesignRequests is keyed by room type; slices keep request order.
type DesignRequests map[types.RoomType][]DesignRequest

type Lead struct {
	ID                 string
	CustomerID         *string
	CustomerName       string
	CustomerEmail      string
	CustomerAvatar     *string
	DesignerID         *string
	DesignRequests     DesignRequests
	Status             types.LeadStatus
	Priority           types.Priority
	LastContactAt      time.Time
	TotalMessages      int
	Budget             *decimal.Decimal
	CancellationReason *string
	CancelledAt        *time.Time
	ConvertedAt        *time.Time
	ProjectID          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindByID(ctx context.Context, id string) (*Lead, error)
	FindOpenByCustomer(ctx context.Context, customerID, designerID string) (*Lead, error)
	// FindAll returns every lead when designerID is empty.
	FindAll(ctx context.Context, designerID string) ([]*Lead, error)
	Update(ctx context.Context, lead *Lead) error
	// UpdateStatus applies the change only while the stored status equals from.
	UpdateStatus(ctx context.Context, id string, from, to types.LeadStatus) (bool, error)
	UpdateDesignRequests(ctx context.Context, id string, requests DesignRequests) error
	Cancel(ctx context.Context, id, reason string) (bool, error)
	RecordMessage(ctx context.Context, id string, at time.Time) error
	CountByStatus(ctx context.Context, designerID string) (map[types.LeadStatus]int, error)
}

type pgLeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &pgLeadRepository{pool: pool}
}

const leadColumns = `
	id, customer_id, customer_name, customer_email, customer_avatar, designer_id,
	design_requests, status, priority, last_contact_at, total_messages, budget,
	cancellation_reason, cancelled_at, converted_at, project_id, created_at, updated_at
`

func scanLead(row pgx.Row) (*Lead, error) {
	l := &Lead{}
	var requests []byte
	if err := row.Scan(
		&l.ID, &l.CustomerID, &l.CustomerName, &l.CustomerEmail, &l.CustomerAvatar, &l.DesignerID,
		&requests, &l.Status, &l.Priority, &l.LastContactAt, &l.TotalMessages, &l.Budget,
		&l.CancellationReason, &l.CancelledAt, &l.ConvertedAt, &l.ProjectID, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.DesignRequests = DesignRequests{}
	if len(requests) > 0 {
		if err := json.Unmarshal(requests, &l.DesignRequests); err != nil {
			return nil, fmt.Errorf("decode design requests: %w", err)
		}
	}
	return l, nil
}

func encodeDesignRequests(requests DesignRequests) ([]byte, error) {
	if requests == nil {
		requests = DesignRequests{}
	}
	for room, list := range requests {
		if list == nil {
			requests[room] = []DesignRequest{}
		}
	}
	return json.Marshal(requests)
}

func (r *pgLeadRepository) Create(ctx context.Context, lead *Lead) error {
	requests, err := encodeDesignRequests(lead.DesignRequests)
	if err != nil {
		return err
	}
	if lead.Status == "" {
		lead.Status = types.LeadNew
	}
	if lead.Priority == "" {
		lead.Priority = types.PriorityMedium
	}
	if lead.LastContactAt.IsZero() {
		lead.LastContactAt = time.Now()
	}

	query := `
		INSERT INTO leads (customer_id, customer_name, customer_email, customer_avatar, designer_id,
			design_requests, status, priority, last_contact_at, total_messages, budget)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		lead.CustomerID, lead.CustomerName, lead.CustomerEmail, lead.CustomerAvatar, lead.DesignerID,
		requests, lead.Status, lead.Priority, lead.LastContactAt, lead.TotalMessages, lead.Budget,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
}

func (r *pgLeadRepository) FindByID(ctx context.Context, id string) (*Lead, error) {
	l, err := scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *pgLeadRepository) FindOpenByCustomer(ctx context.Context, customerID, designerID string) (*Lead, error) {
	query := `
		SELECT ` + leadColumns + ` FROM leads
		WHERE customer_id = $1 AND designer_id = $2 AND status NOT IN ('converted', 'cancelled')
		ORDER BY created_at DESC LIMIT 1
	`
	l, err := scanLead(r.pool.QueryRow(ctx, query, customerID, designerID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return l, err
}

func (r *pgLeadRepository) FindAll(ctx context.Context, designerID string) ([]*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []interface{}
	if designerID != "" {
		query += ` WHERE designer_id = $1`
		args = append(args, designerID)
	}
	query += ` ORDER BY last_contact_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]*Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *pgLeadRepository) Update(ctx context.Context, lead *Lead) error {
	query := `
		UPDATE leads SET designer_id = $2, priority = $3, budget = $4, customer_avatar = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		lead.ID, lead.DesignerID, lead.Priority, lead.Budget, lead.CustomerAvatar,
	).Scan(&lead.UpdatedAt)
}

func (r *pgLeadRepository) UpdateStatus(ctx context.Context, id string, from, to types.LeadStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgLeadRepository) UpdateDesignRequests(ctx context.Context, id string, requests DesignRequests) error {
	data, err := encodeDesignRequests(requests)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE leads SET design_requests = $2, updated_at = NOW() WHERE id = $1`,
		id, data,
	)
	return err
}

func (r *pgLeadRepository) Cancel(ctx context.Context, id, reason string) (bool, error) {
	query := `
		UPDATE leads SET status = 'cancelled', cancellation_reason = $2, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('converted', 'cancelled')
	`
	tag, err := r.pool.Exec(ctx, query, id, reason)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgLeadRepository) RecordMessage(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE leads SET total_messages = total_messages + 1, last_contact_at = $2 WHERE id = $1`,
		id, at,
	)
	return err
}

func (r *pgLeadRepository) CountByStatus(ctx context.Context, designerID string) (map[types.LeadStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM leads`
	var args []interface{}
	if designerID != "" {
		query += ` WHERE designer_id = $1`
		args = append(args, designerID)
	}
	query += ` GROUP BY status`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[types.LeadStatus]int)
	for rows.Next() {
		var (
			status types.LeadStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
