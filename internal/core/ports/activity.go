package ports

import (
	"context"

	"github.com/tradelink/marketplace/internal/core/domain"
)

// ActivityRepository appends audit entries.
type ActivityRepository interface {
	Insert(ctx context.Context, activity *domain.Activity) error
}

// ActivityRecorder accepts audit entries without blocking the caller.
type ActivityRecorder interface {
	Record(activity domain.Activity)
}
