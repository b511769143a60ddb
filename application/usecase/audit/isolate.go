package audit

import (
	"context"
	"fmt"

	"github.com/fabricflow/fabricflow/infrastructure/service/logger"
)

// isolate runs one side-effecting audit step. Errors and panics are
// reported to the diagnostic logger and never reach the caller.
func isolate(ctx context.Context, log logger.Logger, step string, req stepInfo, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			report(ctx, log, step, req, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := fn(); err != nil {
		report(ctx, log, step, req, err)
		return false
	}
	return true
}

type stepInfo struct {
	action   string
	resource string
	id       string
}

func report(ctx context.Context, log logger.Logger, step string, req stepInfo, err error) {
	if log == nil {
		return
	}
	defer func() { _ = recover() }()
	logger.LogAuditFailure(ctx, log, step, req.action, req.resource, err, map[string]interface{}{
		"resource_id": req.id,
	})
}
