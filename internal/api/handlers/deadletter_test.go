package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pratik-mahalle/petalert/internal/api/dto"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/services"
	"github.com/pratik-mahalle/petalert/internal/testutil"
)

func TestDeadLetterHandler(t *testing.T) {
	repo := testutil.NewMockDeadLetterRepository()
	ctx := context.Background()
	for _, f := range []*notification.FailedNotification{
		{EventID: "job-1", Channel: notification.ChannelEmail, AlertID: 1, UserID: 2, Reason: notification.ReasonPermanent, Payload: json.RawMessage(`{"to":"a@b.c"}`), FailedAt: time.Now()},
		{EventID: "job-2", Channel: notification.ChannelChat, AlertID: 1, UserID: 3, Reason: notification.ReasonRetriesExhausted, RetryCount: 3, FailedAt: time.Now()},
	} {
		if _, err := repo.Save(ctx, f); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	handler := NewDeadLetterHandler(services.NewDeadLetterService(repo), testLogger())

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{name: "all", query: "", expectedStatus: http.StatusOK, expectedCount: 2},
		{name: "chat only", query: "?channel=chat", expectedStatus: http.StatusOK, expectedCount: 1},
		{name: "other alert", query: "?alert_id=9", expectedStatus: http.StatusOK, expectedCount: 0},
		{name: "unknown channel", query: "?channel=sms", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.List(rr, newRequest(http.MethodGet, "/api/v1/dead-letters"+tt.query, nil, 1, "admin", nil))

			if rr.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
			if rr.Code != http.StatusOK {
				return
			}
			var page struct {
				Data []dto.DeadLetterDTO `json:"data"`
			}
			readData(t, rr, &page)
			if len(page.Data) != tt.expectedCount {
				t.Errorf("got %d entries, want %d", len(page.Data), tt.expectedCount)
			}
		})
	}

	rr := httptest.NewRecorder()
	handler.Get(rr, newRequest(http.MethodGet, "/", nil, 1, "admin", map[string]string{"eventId": "job-1"}))
	if rr.Code != http.StatusOK {
		t.Fatalf("Get() status = %d, want 200", rr.Code)
	}
	var got dto.DeadLetterDTO
	readData(t, rr, &got)
	if got.Reason != string(notification.ReasonPermanent) || string(got.Payload) != `{"to":"a@b.c"}` {
		t.Errorf("Get() = %+v", got)
	}

	rr = httptest.NewRecorder()
	handler.Get(rr, newRequest(http.MethodGet, "/", nil, 1, "admin", map[string]string{"eventId": "nope"}))
	if rr.Code != http.StatusNotFound {
		t.Errorf("Get(missing) status = %d, want 404", rr.Code)
	}
}
