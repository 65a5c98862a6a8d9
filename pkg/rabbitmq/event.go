package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a portfolio lifecycle transition.
type EventType string

const (
	PortfolioCreated   EventType = "portfolio.created"
	PortfolioUpdated   EventType = "portfolio.updated"
	PortfolioPublished EventType = "portfolio.published"
	PortfolioDeleted   EventType = "portfolio.deleted"
)

// PortfolioEvent is the message body published to PortfolioQueue.
type PortfolioEvent struct {
	Type        EventType `json:"type"`
	PortfolioID string    `json:"portfolioId"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"isPublished"`
	OccurredAt  time.Time `json:"occurredAt"`
}

// Marshal encodes the event as JSON.
func (e PortfolioEvent) Marshal() ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", e.Type, err)
	}
	return body, nil
}
