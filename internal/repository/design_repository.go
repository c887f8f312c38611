package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Design is a catalog proposal published by a designer.
type Design struct {
	ID              string             `db:"id"`
	DesignerID      string             `db:"designer_id"`
	Title           string             `db:"title"`
	Description     *string            `db:"description"`
	RoomType        types.RoomType     `db:"room_type"`
	Style           *string            `db:"style"`
	Images          pq.StringArray     `db:"images"`
	Price           decimal.Decimal    `db:"price"`
	Status          types.DesignStatus `db:"status"`
	RejectionReason *string            `db:"rejection_reason"`
	CreatedAt       time.Time          `db:"created_at"`
	UpdatedAt       time.Time          `db:"updated_at"`
}

// DesignFilter narrows design listings. Empty fields match everything.
type DesignFilter struct {
	DesignerID string
	Status     types.DesignStatus
	RoomType   types.RoomType
}

type DesignRepository interface {
	Create(ctx context.Context, design *Design) error
	FindByID(ctx context.Context, id string) (*Design, error)
	FindByIDs(ctx context.Context, ids []string) ([]*Design, error)
	List(ctx context.Context, filter DesignFilter) ([]*Design, error)
	Update(ctx context.Context, design *Design) error
	// UpdateStatus applies the change only while the stored status equals from.
	UpdateStatus(ctx context.Context, id string, from, to types.DesignStatus, reason *string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type sqlxDesignRepository struct {
	db *sqlx.DB
}

func NewDesignRepository(db *sqlx.DB) DesignRepository {
	return &sqlxDesignRepository{db: db}
}

const designColumns = `id, designer_id, title, description, room_type, style, images, price, status, rejection_reason, created_at, updated_at`

func (r *sqlxDesignRepository) Create(ctx context.Context, design *Design) error {
	if design.Status == "" {
		design.Status = types.DesignDraft
	}
	if design.Images == nil {
		design.Images = pq.StringArray{}
	}
	query := `
		INSERT INTO designs (designer_id, title, description, room_type, style, images, price, status)
		VALUES (:designer_id, :title, :description, :room_type, :style, :images, :price, :status)
		RETURNING id, created_at, updated_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, design)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&design.ID, &design.CreatedAt, &design.UpdatedAt); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (r *sqlxDesignRepository) FindByID(ctx context.Context, id string) (*Design, error) {
	var d Design
	err := r.db.GetContext(ctx, &d, `SELECT `+designColumns+` FROM designs WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *sqlxDesignRepository) FindByIDs(ctx context.Context, ids []string) ([]*Design, error) {
	designs := make([]*Design, 0, len(ids))
	if len(ids) == 0 {
		return designs, nil
	}
	query, args, err := sqlx.In(`SELECT `+designColumns+` FROM designs WHERE id::text IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &designs, r.db.Rebind(query), args...)
	return designs, err
}

func (r *sqlxDesignRepository) List(ctx context.Context, filter DesignFilter) ([]*Design, error) {
	query := `SELECT ` + designColumns + ` FROM designs WHERE 1=1`
	var args []interface{}
	if filter.DesignerID != "" {
		query += ` AND designer_id = ?`
		args = append(args, filter.DesignerID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.RoomType != "" {
		query += ` AND room_type = ?`
		args = append(args, filter.RoomType)
	}
	query += ` ORDER BY created_at DESC`

	designs := make([]*Design, 0)
	err := r.db.SelectContext(ctx, &designs, r.db.Rebind(query), args...)
	return designs, err
}

func (r *sqlxDesignRepository) Update(ctx context.Context, design *Design) error {
	query := `
		UPDATE designs SET title = :title, description = :description, room_type = :room_type,
			style = :style, images = :images, price = :price, updated_at = NOW()
		WHERE id = :id
	`
	_, err := r.db.NamedExecContext(ctx, query, design)
	return err
}

func (r *sqlxDesignRepository) UpdateStatus(ctx context.Context, id string, from, to types.DesignStatus, reason *string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE designs SET status = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, reason)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *sqlxDesignRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1`, id)
	return err
}
