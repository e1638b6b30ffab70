package port

import (
	"context"

	"vision-inspector/internal/domain/entity"
)

// Notifier канал уведомлений оператора о забракованных деталях
type Notifier interface {
	// NotifyNG сообщает оператору о вердикте NG.
	NotifyNG(ctx context.Context, result *entity.InferenceResult) error
}
