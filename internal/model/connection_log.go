package model

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus enumerates the lifecycle of a logged session.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)

// ConnectionLog is an audit row written once per successful login and closed
// on disconnect. The serial ID doubles as a strictly increasing sequence, so
// "most recent connected row" is deterministic even for equal timestamps.
// The email is denormalized so the row survives user deletion.
type ConnectionLog struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	UserID          *uuid.UUID       `json:"userId" gorm:"type:uuid;index"`
	Email           string           `json:"email" gorm:"size:255;not null;index"`
	ConnectionTime  time.Time        `json:"connectionTime" gorm:"autoCreateTime;index"`
	IPAddress       string           `json:"ipAddress" gorm:"size:45"`
	SessionDuration *int             `json:"sessionDuration,omitempty"`
	Status          ConnectionStatus `json:"status" gorm:"type:varchar(20);default:'connected';index"`
}

// ConnectionWithUser is a reporting projection of a connection log joined
// with the owning user's display fields.
type ConnectionWithUser struct {
	ID              uint             `json:"id"`
	UserID          *uuid.UUID       `json:"userId"`
	Email           string           `json:"email"`
	FullName        string           `json:"fullName,omitempty"`
	CompanyName     string           `json:"companyName,omitempty"`
	ConnectionTime  time.Time        `json:"connectionTime"`
	IPAddress       string           `json:"ipAddress"`
	SessionDuration *int             `json:"sessionDuration,omitempty"`
	Status          ConnectionStatus `json:"status"`
}
