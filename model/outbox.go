package model

import "time"

type OutboxStatus int

const (
	OutboxPending   OutboxStatus = 1
	OutboxCompleted OutboxStatus = 2
)

type Outbox struct {
	ID          int64        `db:"id"`
	AggregateID string       `db:"aggregate_id"`
	Content     []byte       `db:"content"`
	Status      OutboxStatus `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

type ProcessedOrder struct {
	OrderID   string    `db:"order_id"`
	CreatedAt time.Time `db:"created_at"`
}
