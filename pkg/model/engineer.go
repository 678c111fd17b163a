package model

import (
	"time"
)

// EngineerAccountStatus is the account approval state, managed by the
// administrative endpoint. It is unrelated to booking assignment.
type EngineerAccountStatus string

const (
	AccountPending  EngineerAccountStatus = "Pending"
	AccountActive   EngineerAccountStatus = "Active"
	AccountInactive EngineerAccountStatus = "Inactive"
	AccountRejected EngineerAccountStatus = "Rejected"
)

func AdminEngineerStatuses() []EngineerAccountStatus {
	return []EngineerAccountStatus{AccountPending, AccountActive, AccountInactive, AccountRejected}
}

type Engineer struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	FirstName  string `json:"first_name" bson:"first_name" validate:"required,min=2,max=50"`
	LastName   string `json:"last_name" bson:"last_name" validate:"required,min=2,max=50"`
	Email      string `json:"email" bson:"email" validate:"required,email"`
	Phone      string `json:"phone" bson:"phone" validate:"required,min=7,max=20"`
	Discipline string `json:"discipline" bson:"discipline" validate:"required,min=2,max=100"`
	City       string `json:"city" bson:"city" validate:"required,min=2,max=100"`
	Country    string `json:"country" bson:"country" validate:"required,min=2,max=100"`

	Status   EngineerAccountStatus `json:"status" bson:"status"`
	IsOnline bool                  `json:"is_online" bson:"is_online"`

	// Location is absent until the first report from the field app.
	Location *GeoPoint `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,geo_point"`

	// AcceptedCount and RejectedCount are advisory bookkeeping, incremented
	// best-effort after claim outcomes. They are not a source of truth for
	// what is currently assigned.
	AcceptedCount int64   `json:"accepted_count" bson:"accepted_count"`
	RejectedCount int64   `json:"rejected_count" bson:"rejected_count"`
	Earnings      float64 `json:"earnings" bson:"earnings"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// LocationUpdate is a partial update: nil fields are left unchanged.
// Latitude and longitude must be supplied together to form a point.
type LocationUpdate struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsOnline  *bool    `json:"is_online,omitempty"`
}

// HasPoint reports whether the update carries a complete coordinate pair.
func (u *LocationUpdate) HasPoint() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// Empty reports whether the update changes nothing.
func (u *LocationUpdate) Empty() bool {
	return !u.HasPoint() && u.IsOnline == nil
}

// EngineerStatusUpdate carries the administrative account transition.
type EngineerStatusUpdate struct {
	Status EngineerAccountStatus `json:"status"`
}

// Dashboard is the per-engineer stats snapshot.
type Dashboard struct {
	Earnings      float64 `json:"earnings"`
	AcceptedCount int64   `json:"accepted_count"`
	RejectedCount int64   `json:"rejected_count"`
	IsOnline      bool    `json:"is_online"`
}
