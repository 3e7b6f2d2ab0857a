package service

import (
	"worktracker/internal/model"
)

const (
	EventRequestCreated       = "request.created"
	EventRequestUpdated       = "request.updated"
	EventRequestDeleted       = "request.deleted"
	EventRequestStatusChanged = "request.status_changed"
)

// RequestEvent is published after a request change has been committed.
type RequestEvent struct {
	Type    string        `json:"type"`
	Request model.Request `json:"request"`
}

// Notifier delivers request events to interested clients. Publish must not block.
type Notifier interface {
	Publish(event RequestEvent)
}

type noopNotifier struct{}

func (noopNotifier) Publish(RequestEvent) {}
