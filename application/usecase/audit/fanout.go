package audit

import (
	"context"
	"errors"

	"github.com/fabricflow/fabricflow/application/port/outbound"
	"github.com/fabricflow/fabricflow/domain"
)

// FanOutWriter writes each entry to every writer and joins their errors
type FanOutWriter []outbound.AuditWriter

func (w FanOutWriter) WriteAuditEntry(ctx context.Context, entry *domain.AuditEntry) error {
	var errs []error
	for _, writer := range w {
		if writer == nil {
			continue
		}
		if err := writer.WriteAuditEntry(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
