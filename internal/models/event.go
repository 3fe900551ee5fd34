package models

import "time"

type StoreAction string

const (
	ActionCreated StoreAction = "created"
	ActionUpdated StoreAction = "updated"
	ActionDeleted StoreAction = "deleted"
)

// StoreEvent é publicado no RabbitMQ a cada alteração e repassado aos clientes websocket.
type StoreEvent struct {
	EventID   string      `json:"event_id"`
	Action    StoreAction `json:"action"`
	StoreID   int64       `json:"store_id"`
	OwnerID   string      `json:"ownerid"`
	CNPJ      string      `json:"cnpj"`
	Name      string      `json:"name"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}
