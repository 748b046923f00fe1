package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridianshop/meridian-admin/internal/jobs"
	"github.com/meridianshop/meridian-admin/internal/rbac"
	"github.com/meridianshop/meridian-admin/internal/screens"
)

const (
	// TaskNavAudit re-validates the screen tree and the persisted role
	// definitions against the permission catalog.
	TaskNavAudit = "nav:audit"
)

// NavAuditPayload carries scheduling metadata.
type NavAuditPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewNavAuditTask constructs an Asynq task for the navigation audit.
func NewNavAuditTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(NavAuditPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNavAudit, body, asynq.Queue(QueueDefault)), nil
}

// RoleSource supplies the persisted role definitions for auditing.
type RoleSource interface {
	RoleDefinitions(ctx context.Context) ([]rbac.Role, rbac.RolePermissionMap, error)
}

// PGRoleSource reads role definitions and grants from PostgreSQL.
type PGRoleSource struct {
	pool *pgxpool.Pool
}

// NewPGRoleSource constructs a role source over the pool.
func NewPGRoleSource(pool *pgxpool.Pool) *PGRoleSource {
	return &PGRoleSource{pool: pool}
}

// RoleDefinitions fetches every role plus its grant keys. Scope payloads are
// irrelevant to the audit, so grants carry plain true values.
func (s *PGRoleSource) RoleDefinitions(ctx context.Context) ([]rbac.Role, rbac.RolePermissionMap, error) {
	rows, err := s.pool.Query(ctx, `SELECT code, type FROM roles ORDER BY code`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(&role.Code, &role.Type); err != nil {
			return nil, nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	grantRows, err := s.pool.Query(ctx,
		`SELECT r.code, rp.permission_key
		   FROM role_permissions rp
		   JOIN roles r ON r.id = rp.role_id`)
	if err != nil {
		return nil, nil, err
	}
	defer grantRows.Close()

	grants := make(rbac.RolePermissionMap)
	for grantRows.Next() {
		var code, key string
		if err := grantRows.Scan(&code, &key); err != nil {
			return nil, nil, err
		}
		if grants[code] == nil {
			grants[code] = make(map[string]rbac.Scope)
		}
		grants[code][key] = true
	}
	return roles, grants, grantRows.Err()
}

// NewNavAuditHandler rebuilds the declarative screen registry, then checks
// the role rows against the catalog, logging every violation it finds. Both
// run at startup and on role edits too; the audit exists so drift introduced
// by a bad deploy or a stray migration shows up in logs, not only as a crash
// loop or a rejected request.
func NewNavAuditHandler(source RoleSource, logger *slog.Logger, metrics *jobmetrics.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track("nav_audit")
		var payload NavAuditPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		catalog, _, err := screens.Load()
		if err != nil {
			logViolations(logger, "screen registry", err)
			return tracker.End(err)
		}
		if source != nil {
			roles, grants, err := source.RoleDefinitions(ctx)
			if err != nil {
				return tracker.End(err)
			}
			if err := rbac.ValidateRoles(roles, grants, catalog); err != nil {
				logViolations(logger, "role definitions", err)
				return tracker.End(err)
			}
		}
		if logger != nil {
			logger.Info("navigation audit clean", slog.String("job", "nav_audit"))
		}
		return tracker.End(nil)
	}
}

func logViolations(logger *slog.Logger, subject string, err error) {
	var mis *rbac.MisconfigurationError
	if !errors.As(err, &mis) || logger == nil {
		return
	}
	for _, v := range mis.Violations {
		logger.Error("navigation misconfiguration",
			slog.String("job", "nav_audit"),
			slog.String("subject", subject),
			slog.String("kind", string(v.Kind)),
			slog.String("ref", v.Ref),
			slog.String("detail", v.Detail))
	}
}
