package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrLeadNotOpen is returned when a conversion finds the lead already
// converted or cancelled.
var ErrLeadNotOpen = errors.New("lead is not open for conversion")

type ProjectDesign struct {
	DesignID string         `json:"designId"`
	Title    string         `json:"title"`
	RoomType types.RoomType `json:"roomType"`
	Images   []string       `json:"images"`
	Products []ProductItem  `json:"products"`
	Notes    *string        `json:"notes,omitempty"`
}

type StatusHistoryEntry struct {
	Status         types.ProjectStatus `json:"status"`
	StartedAt      time.Time           `json:"startedAt"`
	CompletedAt    *time.Time          `json:"completedAt,omitempty"`
	DurationInDays *int                `json:"durationInDays,omitempty"`
	DueDate        *time.Time          `json:"dueDate,omitempty"`
	Notes          *string             `json:"notes,omitempty"`
	ChangedBy      string              `json:"changedBy,omitempty"`
}

type Project struct {
	ID                 string
	LeadID             string
	CustomerID         *string
	CustomerName       string
	CustomerEmail      string
	CustomerAvatar     *string
	DesignerID         *string
	Title              string
	Status             types.ProjectStatus
	Priority           types.Priority
	Designs            []ProjectDesign
	StartDate          time.Time
	EndDate            time.Time
	DueDate            *time.Time
	TotalTasks         int
	CompletedTasks     int
	TotalRevisions     int
	EstimatedBudget    *decimal.Decimal
	QuoteStatus        *string
	IsLocked           bool
	StatusHistory      []StatusHistoryEntry
	CancellationReason *string
	CompletedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type ProjectRepository interface {
	// CreateFromLead inserts the project and marks the lead converted in one
	// transaction. The project ID must be set by the caller.
	CreateFromLead(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindByLeadID(ctx context.Context, leadID string) (*Project, error)
	// FindAll returns every project when designerID is empty.
	FindAll(ctx context.Context, designerID string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	// UpdateStatus persists status-related fields only while the stored
	// status still equals from.
	UpdateStatus(ctx context.Context, project *Project, from types.ProjectStatus) (bool, error)
	// UpdateDesigns persists project.Designs only while the stored updated_at
	// still equals project.UpdatedAt, then refreshes project.UpdatedAt.
	UpdateDesigns(ctx context.Context, project *Project) (bool, error)
	CountByStatus(ctx context.Context, designerID string) (map[types.ProjectStatus]int, error)
}

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectColumns = `
	id, lead_id, customer_id, customer_name, customer_email, customer_avatar, designer_id,
	title, status, priority, designs, start_date, end_date, due_date, total_tasks,
	completed_tasks, total_revisions, estimated_budget, quote_status, is_locked,
	status_history, cancellation_reason, completed_at, created_at, updated_at
`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	var designs, history []byte
	if err := row.Scan(
		&p.ID, &p.LeadID, &p.CustomerID, &p.CustomerName, &p.CustomerEmail, &p.CustomerAvatar, &p.DesignerID,
		&p.Title, &p.Status, &p.Priority, &designs, &p.StartDate, &p.EndDate, &p.DueDate, &p.TotalTasks,
		&p.CompletedTasks, &p.TotalRevisions, &p.EstimatedBudget, &p.QuoteStatus, &p.IsLocked,
		&history, &p.CancellationReason, &p.CompletedAt, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Designs = []ProjectDesign{}
	if len(designs) > 0 {
		if err := json.Unmarshal(designs, &p.Designs); err != nil {
			return nil, fmt.Errorf("decode designs: %w", err)
		}
	}
	p.StatusHistory = []StatusHistoryEntry{}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.StatusHistory); err != nil {
			return nil, fmt.Errorf("decode status history: %w", err)
		}
	}
	return p, nil
}

func encodeJSONList[T any](list []T) ([]byte, error) {
	if list == nil {
		list = []T{}
	}
	return json.Marshal(list)
}

func (r *pgProjectRepository) CreateFromLead(ctx context.Context, project *Project) error {
	designs, err := encodeJSONList(project.Designs)
	if err != nil {
		return err
	}
	history, err := encodeJSONList(project.StatusHistory)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status types.LeadStatus
	err = tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, project.LeadID).Scan(&status)
	if err == pgx.ErrNoRows {
		return ErrLeadNotOpen
	}
	if err != nil {
		return fmt.Errorf("lock lead: %w", err)
	}
	if status.IsTerminal() {
		return ErrLeadNotOpen
	}

	insert := `
		INSERT INTO projects (id, lead_id, customer_id, customer_name, customer_email, customer_avatar,
			designer_id, title, status, priority, designs, start_date, end_date, estimated_budget,
			status_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`
	if err := tx.QueryRow(ctx, insert,
		project.ID, project.LeadID, project.CustomerID, project.CustomerName, project.CustomerEmail,
		project.CustomerAvatar, project.DesignerID, project.Title, project.Status, project.Priority,
		designs, project.StartDate, project.EndDate, project.EstimatedBudget, history,
	).Scan(&project.CreatedAt, &project.UpdatedAt); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET status = 'converted', converted_at = NOW(), project_id = $2, updated_at = NOW()
		WHERE id = $1
	`, project.LeadID, project.ID); err != nil {
		return fmt.Errorf("mark lead converted: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *pgProjectRepository) FindByLeadID(ctx context.Context, leadID string) (*Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE lead_id = $1`, leadID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (r *pgProjectRepository) FindAll(ctx context.Context, designerID string) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []interface{}
	if designerID != "" {
		query += ` WHERE designer_id = $1`
		args = append(args, designerID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]*Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET title = $2, priority = $3, total_tasks = $4, completed_tasks = $5,
			total_revisions = $6, estimated_budget = $7, quote_status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ID, project.Title, project.Priority, project.TotalTasks, project.CompletedTasks,
		project.TotalRevisions, project.EstimatedBudget, project.QuoteStatus,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) UpdateStatus(ctx context.Context, project *Project, from types.ProjectStatus) (bool, error) {
	history, err := encodeJSONList(project.StatusHistory)
	if err != nil {
		return false, err
	}
	query := `
		UPDATE projects SET status = $3, status_history = $4, is_locked = $5, due_date = $6,
			completed_at = $7, cancellation_reason = $8, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`
	err = r.pool.QueryRow(ctx, query,
		project.ID, from, project.Status, history, project.IsLocked, project.DueDate,
		project.CompletedAt, project.CancellationReason,
	).Scan(&project.UpdatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *pgProjectRepository) UpdateDesigns(ctx context.Context, project *Project) (bool, error) {
	data, err := encodeJSONList(project.Designs)
	if err != nil {
		return false, err
	}
	query := `
		UPDATE projects SET designs = $2, updated_at = NOW()
		WHERE id = $1 AND updated_at = $3
		RETURNING updated_at
	`
	err = r.pool.QueryRow(ctx, query, project.ID, data, project.UpdatedAt).Scan(&project.UpdatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *pgProjectRepository) CountByStatus(ctx context.Context, designerID string) (map[types.ProjectStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM projects`
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

	counts := make(map[types.ProjectStatus]int)
	for rows.Next() {
		var (
			status types.ProjectStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
