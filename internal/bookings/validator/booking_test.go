package validator

import (
	"testing"

	"dometriks/pkg/logger"
	"dometriks/pkg/model"
)

func newTestValidator() *BookingValidator {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewBookingValidator(log)
}

func validBooking() *model.Booking {
	scheduleNow := true
	return &model.Booking{
		Name:        "Dana Levi",
		Email:       "dana@example.com",
		Phone:       "+972501234567",
		Location:    "12 Herzl St, Tel Aviv",
		ServiceType: "Electrical Survey",
		ScheduleNow: &scheduleNow,
	}
}

func TestValidate_ValidBooking(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validBooking()); err != nil {
		t.Fatalf("expected valid booking, got error: %v", err)
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name   string
		mutate func(b *model.Booking)
	}{
		{"missing name", func(b *model.Booking) { b.Name = "" }},
		{"missing email", func(b *model.Booking) { b.Email = "" }},
		{"invalid email", func(b *model.Booking) { b.Email = "not-an-email" }},
		{"missing phone", func(b *model.Booking) { b.Phone = "" }},
		{"missing location", func(b *model.Booking) { b.Location = "" }},
		{"missing service type", func(b *model.Booking) { b.ServiceType = "" }},
		{"name too short", func(b *model.Booking) { b.Name = "x" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)
			if err := v.Validate(b); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidate_Coordinates(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		point   *model.GeoPoint
		wantErr bool
	}{
		{"no coordinates is allowed", nil, false},
		{"valid point", model.NewGeoPoint(34.7818, 32.0853), false},
		{"longitude out of range", &model.GeoPoint{Type: "Point", Coordinates: []float64{181.0, 10.0}}, true},
		{"latitude out of range", &model.GeoPoint{Type: "Point", Coordinates: []float64{10.0, 91.0}}, true},
		{"wrong type", &model.GeoPoint{Type: "Polygon", Coordinates: []float64{10.0, 10.0}}, true},
		{"missing coordinate pair", &model.GeoPoint{Type: "Point", Coordinates: []float64{10.0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			b.Coordinates = tt.point
			err := v.Validate(b)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected valid booking, got error: %v", err)
			}
		})
	}
}

func TestValidate_DeferredScheduleNeedsSlot(t *testing.T) {
	v := newTestValidator()

	scheduleNow := false

	b := validBooking()
	b.ScheduleNow = &scheduleNow
	if err := v.Validate(b); err == nil {
		t.Error("expected error when schedule_now is false without date and time")
	}

	b = validBooking()
	b.ScheduleNow = &scheduleNow
	b.ScheduleDate = "2026-09-15"
	b.ScheduleTime = "14:00"
	if err := v.Validate(b); err != nil {
		t.Errorf("expected valid deferred booking, got error: %v", err)
	}
}

func TestValidateStatus(t *testing.T) {
	v := newTestValidator()

	for _, status := range model.AdminBookingStatuses() {
		if err := v.ValidateStatus(status); err != nil {
			t.Errorf("status %q should be allowed, got error: %v", status, err)
		}
	}

	// The dispatch-only stages and garbage are rejected.
	rejected := []model.BookingStatus{
		model.StatusUnassigned,
		model.StatusAssigned,
		model.StatusSurveyDone,
		"Bogus",
		"",
	}
	for _, status := range rejected {
		if err := v.ValidateStatus(status); err == nil {
			t.Errorf("status %q should be rejected", status)
		}
	}
}
