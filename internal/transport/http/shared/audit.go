package shared

import (
	"context"
	"net/http"

	"elms/internal/platform/logger"
	"elms/internal/transport/http/middleware"
)

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

// RecordAudit writes an audit event and only logs when that fails.
func RecordAudit(r *http.Request, auditor Auditor, actorID, action, entityType, entityID string, before, after any) {
	if auditor == nil {
		return
	}
	ctx := r.Context()
	if err := auditor.Record(ctx, actorID, action, entityType, entityID, middleware.GetRequestID(ctx), ClientIP(r), before, after); err != nil {
		logger.FromContext(ctx).Sugar().Warnw("audit record failed", "action", action, "entityType", entityType, "err", err)
	}
}
