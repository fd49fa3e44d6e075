package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/infrastructure/postgres/generated"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

const auditColumns = `id, owner_id, action, resource_type, resource_id,
		request_id, reason, before_state, after_state, created_at`

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	db generated.DBTX
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db generated.DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// CreateTx inserts an audit log entry inside the caller's unit of work.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	pgxTx, err := txFrom(tx)
	if err != nil {
		return err
	}

	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	beforeState, err := marshalState(log.BeforeState)
	if err != nil {
		return domain.StorageError(err)
	}

	afterState, err := marshalState(log.AfterState)
	if err != nil {
		return domain.StorageError(err)
	}

	_, err = pgxTx.Exec(ctx, `
		INSERT INTO audit_logs (`+auditColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		log.ID,
		log.OwnerID,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		log.Reason,
		beforeState,
		afterState,
		log.CreatedAt,
	)

	return mapError(err, nil)
}

// List retrieves audit logs matching filter, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var (
		conditions []string
		args       []any
	)

	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.OwnerID != "" {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.Action != "" {
		add("action = $%d", string(filter.Action))
	}
	if filter.ResourceType != "" {
		add("resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		add("resource_id = $%d", filter.ResourceID)
	}
	if filter.StartDate != nil {
		add("created_at >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <= $%d", *filter.EndDate)
	}

	query := "SELECT " + auditColumns + " FROM audit_logs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	return r.query(ctx, query, args...)
}

// GetByResourceID retrieves the trail of one resource, oldest first.
func (r *AuditRepository) GetByResourceID(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLog, error) {
	return r.query(ctx,
		"SELECT "+auditColumns+" FROM audit_logs WHERE resource_type = $1 AND resource_id = $2 ORDER BY created_at, id",
		resourceType, resourceID,
	)
}

func (r *AuditRepository) query(ctx context.Context, query string, args ...any) ([]*domain.AuditLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, nil)
	}
	defer rows.Close()

	logs, err := pgx.CollectRows(rows, scanAuditLog)
	if err != nil {
		return nil, mapError(err, nil)
	}

	return logs, nil
}

func scanAuditLog(row pgx.CollectableRow) (*domain.AuditLog, error) {
	var (
		log                     domain.AuditLog
		action                  string
		beforeState, afterState []byte
	)

	err := row.Scan(
		&log.ID,
		&log.OwnerID,
		&action,
		&log.ResourceType,
		&log.ResourceID,
		&log.RequestID,
		&log.Reason,
		&beforeState,
		&afterState,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	log.Action = domain.AuditAction(action)
	if beforeState != nil {
		_ = json.Unmarshal(beforeState, &log.BeforeState)
	}
	if afterState != nil {
		_ = json.Unmarshal(afterState, &log.AfterState)
	}

	return &log, nil
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}
