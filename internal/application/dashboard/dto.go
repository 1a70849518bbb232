package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/warehouse/backend/internal/domain/audit"
)

// Summary is the point-in-time dashboard snapshot. All figures come from a
// single consistent read, a movement committing mid-query cannot make the
// counters disagree with each other.
type Summary struct {
	ActiveProducts    int64           `json:"active_products"`
	TodayInbound      int64           `json:"today_inbound"`
	TodayOutbound     int64           `json:"today_outbound"`
	TodayInboundValue decimal.Decimal `json:"today_inbound_value"`
	LowStockAlerts    int64           `json:"low_stock_alerts"`
}

// VolumePoint is one day of movement counts
type VolumePoint struct {
	Date     string `json:"date"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

// Activity is one entry of the recent-activity feed. ID is the audit record
// id, so consumers can deduplicate entries across overlapping fetches.
type Activity struct {
	ID        int64      `json:"id"`
	ActorID   string     `json:"actor_id"`
	Verb      string     `json:"verb"`
	Subject   string     `json:"subject"`
	Changes   audit.Diff `json:"changes"`
	Timestamp string     `json:"timestamp"`
}
