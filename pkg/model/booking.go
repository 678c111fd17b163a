package model

import (
	"time"
)

// BookingStatus is the externally visible lifecycle stage of a booking.
// It is mutated both by the dispatch flow (claim, survey, completion) and
// by the administrative status endpoint, so claimability checks must never
// rely on it alone.
type BookingStatus string

const (
	StatusUnassigned BookingStatus = "Unassigned"
	StatusAssigned   BookingStatus = "Assigned"
	StatusSurveyDone BookingStatus = "Survey Done"
	StatusPending    BookingStatus = "Pending"
	StatusConfirmed  BookingStatus = "Confirmed"
	StatusCompleted  BookingStatus = "Completed"
	StatusCancelled  BookingStatus = "Cancelled"
)

// EngineerStatus is the assignment-side lifecycle stage, tracked separately
// from BookingStatus because assignment and confirmation are distinct
// processes sharing one record.
type EngineerStatus string

const (
	EngineerUnassigned EngineerStatus = "Unassigned"
	EngineerPending    EngineerStatus = "Pending"
	EngineerAccepted   EngineerStatus = "Accepted"
	EngineerAssigned   EngineerStatus = "Assigned"
	EngineerSurveyDone EngineerStatus = "Survey Done"
	EngineerCompleted  EngineerStatus = "Completed"
)

// Claimable reports whether a booking in this assignment stage may still
// be claimed. Pending is included for legacy records.
func (s EngineerStatus) Claimable() bool {
	return s == EngineerUnassigned || s == EngineerPending
}

// ClaimableEngineerStatuses returns the stages the claim precondition
// accepts, in the form repository filters consume.
func ClaimableEngineerStatuses() []EngineerStatus {
	return []EngineerStatus{EngineerUnassigned, EngineerPending}
}

// AdminBookingStatuses returns the statuses the administrative update
// endpoint may set. The dispatch-only stages (Unassigned, Assigned,
// Survey Done) are reachable solely through the claim flow.
func AdminBookingStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}
}

type Booking struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" bson:"email" validate:"required,email"`
	Phone       string `json:"phone" bson:"phone" validate:"required,min=7,max=20"`
	Location    string `json:"location" bson:"location" validate:"required,min=2,max=200"`
	ServiceType string `json:"service_type" bson:"service_type" validate:"required,min=2,max=100"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`

	ScheduleNow  *bool  `json:"schedule_now,omitempty" bson:"schedule_now"`
	ScheduleDate string `json:"schedule_date,omitempty" bson:"schedule_date,omitempty"`
	ScheduleTime string `json:"schedule_time,omitempty" bson:"schedule_time,omitempty"`

	// Latitude and Longitude are the intake representation; they must be
	// supplied together and are folded into Coordinates before persisting.
	Latitude  *float64 `json:"latitude,omitempty" bson:"-"`
	Longitude *float64 `json:"longitude,omitempty" bson:"-"`

	// Coordinates are optional; a booking without them can never be matched.
	Coordinates *GeoPoint `json:"coordinates,omitempty" bson:"coordinates,omitempty" validate:"omitempty,geo_point"`

	// AssignedEngineerID is set exactly once, by the atomic claim update.
	// omitempty keeps the field absent on unclaimed documents so the
	// {assigned_engineer_id: null} precondition filter matches them.
	AssignedEngineerID string         `json:"assigned_engineer_id,omitempty" bson:"assigned_engineer_id,omitempty" validate:"omitempty,mongodb"`
	EngineerStatus     EngineerStatus `json:"engineer_status" bson:"engineer_status"`
	Status             BookingStatus  `json:"status" bson:"status"`

	DocumentFilename     string `json:"document_filename,omitempty" bson:"document_filename,omitempty"`
	DocumentOriginalName string `json:"document_original_name,omitempty" bson:"document_original_name,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Claimed reports whether the booking has an assigned engineer.
func (b *Booking) Claimed() bool {
	return b.AssignedEngineerID != ""
}

// AssignmentConsistent reports whether the denormalized status pair agrees
// with the assignee field: an engineer is assigned iff the assignment stage
// has left Unassigned/Pending.
func (b *Booking) AssignmentConsistent() bool {
	return b.Claimed() != b.EngineerStatus.Claimable()
}

// BookingStatusUpdate carries the administrative status transition.
type BookingStatusUpdate struct {
	Status BookingStatus `json:"status"`
}

// CompletionRequest carries the document reference submitted when the
// assigned engineer finishes a job. The upload itself happens elsewhere;
// only the reference is recorded here.
type CompletionRequest struct {
	DocumentFilename     string `json:"document_filename" validate:"required"`
	DocumentOriginalName string `json:"document_original_name,omitempty"`
}
