package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type QuoteLineItem struct {
	LineID      string          `json:"lineId"`
	ItemName    string          `json:"itemName"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalPrice  decimal.Decimal `json:"totalPrice"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

// QuoteSummary is computed once at creation; TotalAmount is authoritative
// afterwards and is never reconciled against the line items.
type QuoteSummary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	TaxPercent  decimal.Decimal `json:"taxPercent"`
	TaxAmount   decimal.Decimal `json:"taxAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type ApprovalEntry struct {
	AdminID   string            `json:"adminId"`
	AdminName string            `json:"adminName"`
	Status    types.QuoteStatus `json:"status"`
	Comments  *string           `json:"comments,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type QuoteLineItems []QuoteLineItem
type ApprovalHistory []ApprovalEntry

type Quotation struct {
	ID              string            `db:"id"`
	ProjectID       string            `db:"project_id"`
	ProjectTitle    string            `db:"project_title"`
	Version         int               `db:"version"`
	CustomerID      *string           `db:"customer_id"`
	CustomerName    string            `db:"customer_name"`
	DesignerID      *string           `db:"designer_id"`
	DesignerName    string            `db:"designer_name"`
	Status          types.QuoteStatus `db:"status"`
	LineItems       QuoteLineItems    `db:"line_items"`
	Summary         QuoteSummary      `db:"summary"`
	ApprovalHistory ApprovalHistory   `db:"approval_history"`
	NotesToAdmin    *string           `db:"notes_to_admin"`
	NotesToCustomer *string           `db:"notes_to_customer"`
	ValidUntil      *time.Time        `db:"valid_until"`
	SubmittedAt     time.Time         `db:"submitted_at"`
	CreatedAt       time.Time         `db:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at"`
}

// QuotationFilter narrows listings. Empty fields match everything.
type QuotationFilter struct {
	Status     types.QuoteStatus
	DesignerID string
	ProjectID  string
}

type QuotationRepository interface {
	// Create assigns the next version number for the project.
	Create(ctx context.Context, q *Quotation) error
	FindByID(ctx context.Context, id string) (*Quotation, error)
	List(ctx context.Context, filter QuotationFilter) ([]*Quotation, error)
	// UpdateDecision persists status and history only while the stored
	// status equals from.
	UpdateDecision(ctx context.Context, q *Quotation, from types.QuoteStatus) (bool, error)
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type sqlxQuotationRepository struct {
	db *sqlx.DB
}

func NewQuotationRepository(db *sqlx.DB) QuotationRepository {
	return &sqlxQuotationRepository{db: db}
}

const quotationColumns = `
	id, project_id, project_title, version, customer_id, customer_name, designer_id, designer_name,
	status, line_items, summary, approval_history, notes_to_admin, notes_to_customer, valid_until,
	submitted_at, created_at, updated_at
`

func (r *sqlxQuotationRepository) Create(ctx context.Context, q *Quotation) error {
	if q.Status == "" {
		q.Status = types.QuotePendingApproval
	}
	if q.LineItems == nil {
		q.LineItems = QuoteLineItems{}
	}
	if q.ApprovalHistory == nil {
		q.ApprovalHistory = ApprovalHistory{}
	}
	query := `
		INSERT INTO quotations (project_id, project_title, version, customer_id, customer_name,
			designer_id, designer_name, status, line_items, summary, approval_history,
			notes_to_admin, notes_to_customer, valid_until)
		VALUES ($1, $2, (SELECT COALESCE(MAX(version), 0) + 1 FROM quotations WHERE project_id = $1),
			$3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, version, submitted_at, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		q.ProjectID, q.ProjectTitle, q.CustomerID, q.CustomerName, q.DesignerID, q.DesignerName,
		q.Status, q.LineItems, q.Summary, q.ApprovalHistory, q.NotesToAdmin, q.NotesToCustomer, q.ValidUntil,
	).Scan(&q.ID, &q.Version, &q.SubmittedAt, &q.CreatedAt, &q.UpdatedAt)
}

func (r *sqlxQuotationRepository) FindByID(ctx context.Context, id string) (*Quotation, error) {
	var q Quotation
	err := r.db.GetContext(ctx, &q, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *sqlxQuotationRepository) List(ctx context.Context, filter QuotationFilter) ([]*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE 1=1`
	var args []interface{}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.DesignerID != "" {
		query += ` AND designer_id = ?`
		args = append(args, filter.DesignerID)
	}
	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	query += ` ORDER BY submitted_at DESC`

	quotes := make([]*Quotation, 0)
	err := r.db.SelectContext(ctx, &quotes, r.db.Rebind(query), args...)
	return quotes, err
}

func (r *sqlxQuotationRepository) UpdateDecision(ctx context.Context, q *Quotation, from types.QuoteStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quotations SET status = $3, approval_history = $4, notes_to_customer = $5, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, q.ID, from, q.Status, q.ApprovalHistory, q.NotesToCustomer)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *sqlxQuotationRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE quotations SET status = 'EXPIRED', updated_at = NOW()
		WHERE valid_until IS NOT NULL AND valid_until < $1
		  AND status IN ('PENDING_APPROVAL', 'ADMIN_APPROVED', 'SENT')
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ============================================
// JSONB column mapping
// ============================================

func jsonValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func jsonScan(src interface{}, dest interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON source type %T", src)
	}
}

func (l QuoteLineItems) Value() (driver.Value, error) {
	if l == nil {
		l = QuoteLineItems{}
	}
	return jsonValue([]QuoteLineItem(l))
}

func (l *QuoteLineItems) Scan(src interface{}) error { return jsonScan(src, (*[]QuoteLineItem)(l)) }

func (h ApprovalHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ApprovalHistory{}
	}
	return jsonValue([]ApprovalEntry(h))
}

func (h *ApprovalHistory) Scan(src interface{}) error { return jsonScan(src, (*[]ApprovalEntry)(h)) }

func (s QuoteSummary) Value() (driver.Value, error) {
	type plain QuoteSummary
	return jsonValue(plain(s))
}

func (s *QuoteSummary) Scan(src interface{}) error {
	type plain QuoteSummary
	return jsonScan(src, (*plain)(s))
}
