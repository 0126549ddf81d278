package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSaleCreated     EventType = "sale.created"
	EventSalePaid        EventType = "sale.paid"
	EventSaleCancelled   EventType = "sale.cancelled"
	EventSaleDelivered   EventType = "sale.delivered"
	EventSaleInvoiced    EventType = "sale.invoiced"
	EventPurchaseCreated EventType = "purchase.created"
	EventStockLow        EventType = "stock.low"
)

// Event is a domain fact raised after a committed transaction.
type Event struct {
	Type       EventType              `json:"type"`
	TenantID   uuid.UUID              `json:"tenant_id"`
	EntityID   uuid.UUID              `json:"entity_id"`
	Actor      string                 `json:"actor,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}
