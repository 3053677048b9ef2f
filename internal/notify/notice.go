// Package notify publishes reconciliation notices for sales whose commit
// outcome is unknown, so an operator can inspect and, if needed, reverse them.
package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Notice describes a sale that needs an operator's attention.
type Notice struct {
	UserID     string    `json:"user_id"`
	SaleID     string    `json:"sale_id"`
	Step       string    `json:"step"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ToJSON encodes the notice.
func (n *Notice) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// NoticeFromJSON decodes a notice.
func NoticeFromJSON(data []byte) (*Notice, error) {
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Publisher delivers notices.
type Publisher interface {
	Publish(ctx context.Context, n Notice) error
	Close() error
}
