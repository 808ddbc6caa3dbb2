package export

import (
	"context"

	"tally/internal/core"
)

// Ports for outbound report adapters.
type (
	// SummaryWriter publishes a per-owner month overview to an external
	// reporting surface.
	SummaryWriter interface {
		WriteMonthOverview(ctx context.Context, ownerID int64, overview core.MonthOverview) error
	}
)
