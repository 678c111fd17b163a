package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "dometriks/pkg/errors"
	"dometriks/pkg/logger"
	"dometriks/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	testEngineerID = "64f0000000000000000000aa"
	testBookingID  = "64f000000000000000000001"
)

// Mock services for testing
type mockEngineerService struct {
	updateLocationFunc func(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error)
	dashboardFunc      func(ctx context.Context, id string) (*model.Dashboard, error)
}

func (m *mockEngineerService) GetByID(ctx context.Context, id string) (*model.Engineer, error) {
	return &model.Engineer{ID: id}, nil
}

func (m *mockEngineerService) GetAll(ctx context.Context, status model.EngineerAccountStatus, limit int, offset int64) ([]*model.Engineer, int64, error) {
	return []*model.Engineer{}, 0, nil
}

func (m *mockEngineerService) UpdateLocation(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
	if m.updateLocationFunc != nil {
		return m.updateLocationFunc(ctx, id, update)
	}
	return &model.Engineer{ID: id}, nil
}

func (m *mockEngineerService) UpdateStatus(ctx context.Context, id string, status model.EngineerAccountStatus) (*model.Engineer, error) {
	return &model.Engineer{ID: id, Status: status}, nil
}

func (m *mockEngineerService) Dashboard(ctx context.Context, id string) (*model.Dashboard, error) {
	if m.dashboardFunc != nil {
		return m.dashboardFunc(ctx, id)
	}
	return &model.Dashboard{}, nil
}

type mockAssignmentService struct {
	nearbyFunc   func(ctx context.Context, engineerID string) ([]*model.Booking, error)
	claimFunc    func(ctx context.Context, engineerID, bookingID string) (*model.Booking, error)
	surveyFunc   func(ctx context.Context, engineerID, bookingID string, target model.BookingStatus) (*model.Booking, error)
	completeFunc func(ctx context.Context, engineerID, bookingID string, req *model.CompletionRequest) (*model.Booking, error)
	myJobsFunc   func(ctx context.Context, engineerID string) ([]*model.Booking, error)
}

func (m *mockAssignmentService) NearbyBookings(ctx context.Context, engineerID string) ([]*model.Booking, error) {
	if m.nearbyFunc != nil {
		return m.nearbyFunc(ctx, engineerID)
	}
	return []*model.Booking{}, nil
}

func (m *mockAssignmentService) Claim(ctx context.Context, engineerID, bookingID string) (*model.Booking, error) {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, engineerID, bookingID)
	}
	return nil, apperrors.Conflict("Booking already claimed or not available")
}

func (m *mockAssignmentService) MarkSurveyDone(ctx context.Context, engineerID, bookingID string, target model.BookingStatus) (*model.Booking, error) {
	if m.surveyFunc != nil {
		return m.surveyFunc(ctx, engineerID, bookingID, target)
	}
	return nil, apperrors.NotFoundWithID("Booking", bookingID)
}

func (m *mockAssignmentService) Complete(ctx context.Context, engineerID, bookingID string, req *model.CompletionRequest) (*model.Booking, error) {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, engineerID, bookingID, req)
	}
	return nil, apperrors.NotFoundWithID("Booking", bookingID)
}

func (m *mockAssignmentService) MyJobs(ctx context.Context, engineerID string) ([]*model.Booking, error) {
	if m.myJobsFunc != nil {
		return m.myJobsFunc(ctx, engineerID)
	}
	return []*model.Booking{}, nil
}

func newTestHandler(eng *mockEngineerService, asg *mockAssignmentService) *EngineerHandler {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return NewEngineerHandler(eng, asg, log)
}

func params(pairs ...string) httprouter.Params {
	var ps httprouter.Params
	for i := 0; i+1 < len(pairs); i += 2 {
		ps = append(ps, httprouter.Param{Key: pairs[i], Value: pairs[i+1]})
	}
	return ps
}

func TestAcceptBooking_LostRaceIs409(t *testing.T) {
	h := newTestHandler(&mockEngineerService{}, &mockAssignmentService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/engineers/"+testEngineerID+"/bookings/"+testBookingID+"/accept", nil)
	w := httptest.NewRecorder()

	h.AcceptBooking(w, req, params("id", testEngineerID, "bookingId", testBookingID))

	if w.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", w.Code)
	}
}

func TestAcceptBooking_WinnerGetsPostImage(t *testing.T) {
	h := newTestHandler(&mockEngineerService{}, &mockAssignmentService{
		claimFunc: func(ctx context.Context, engineerID, bookingID string) (*model.Booking, error) {
			return &model.Booking{
				ID:                 bookingID,
				AssignedEngineerID: engineerID,
				Status:             model.StatusAssigned,
				EngineerStatus:     model.EngineerAssigned,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/engineers/"+testEngineerID+"/bookings/"+testBookingID+"/accept", nil)
	w := httptest.NewRecorder()

	h.AcceptBooking(w, req, params("id", testEngineerID, "bookingId", testBookingID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.AssignedEngineerID != testEngineerID {
		t.Errorf("expected assignee %q, got %q", testEngineerID, resp.Data.AssignedEngineerID)
	}
	if resp.Data.Status != model.StatusAssigned || resp.Data.EngineerStatus != model.EngineerAssigned {
		t.Errorf("expected both statuses Assigned, got %q/%q", resp.Data.Status, resp.Data.EngineerStatus)
	}
}

func TestUpdateBookingStatus_PassesTargetThrough(t *testing.T) {
	var gotTarget model.BookingStatus
	h := newTestHandler(&mockEngineerService{}, &mockAssignmentService{
		surveyFunc: func(ctx context.Context, engineerID, bookingID string, target model.BookingStatus) (*model.Booking, error) {
			gotTarget = target
			return &model.Booking{ID: bookingID, Status: target}, nil
		},
	})

	body := `{"status":"Survey Done"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/engineers/"+testEngineerID+"/bookings/"+testBookingID+"/status", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.UpdateBookingStatus(w, req, params("id", testEngineerID, "bookingId", testBookingID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotTarget != model.StatusSurveyDone {
		t.Errorf("expected target %q, got %q", model.StatusSurveyDone, gotTarget)
	}
}

func TestCompleteBooking_InvalidBody(t *testing.T) {
	h := newTestHandler(&mockEngineerService{}, &mockAssignmentService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/engineers/"+testEngineerID+"/bookings/"+testBookingID+"/complete", strings.NewReader("{bad"))
	w := httptest.NewRecorder()

	h.CompleteBooking(w, req, params("id", testEngineerID, "bookingId", testBookingID))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestUpdateLocation_PartialBody(t *testing.T) {
	var gotUpdate *model.LocationUpdate
	h := newTestHandler(&mockEngineerService{
		updateLocationFunc: func(ctx context.Context, id string, update *model.LocationUpdate) (*model.Engineer, error) {
			gotUpdate = update
			return &model.Engineer{ID: id}, nil
		},
	}, &mockAssignmentService{})

	body := `{"is_online":true}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/engineers/"+testEngineerID+"/location", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.UpdateLocation(w, req, params("id", testEngineerID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotUpdate.Latitude != nil || gotUpdate.Longitude != nil {
		t.Error("expected no coordinates in the decoded update")
	}
	if gotUpdate.IsOnline == nil || !*gotUpdate.IsOnline {
		t.Error("expected is_online true in the decoded update")
	}
}

func TestNearbyBookings_LocationRequiredIs400(t *testing.T) {
	h := newTestHandler(&mockEngineerService{}, &mockAssignmentService{
		nearbyFunc: func(ctx context.Context, engineerID string) ([]*model.Booking, error) {
			return nil, apperrors.InvalidInput("Engineer location is required for nearby search")
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/engineers/"+testEngineerID+"/nearby-bookings", nil)
	w := httptest.NewRecorder()

	h.NearbyBookings(w, req, params("id", testEngineerID))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}
