//go:build !integration

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"otodoki/business/personalization"
	"otodoki/business/suggestions"
	"otodoki/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type fakeSuggestionsService struct {
	gotUserID     *uint
	gotLimit      int
	gotExcludeIDs []string
	tracks        []personalization.ScoredTrack
	personalized  bool
}

func (f *fakeSuggestionsService) GetSuggestions(_ context.Context, userID *uint, limit int, excludeIDs []string) ([]personalization.ScoredTrack, bool, error) {
	f.gotUserID = userID
	f.gotLimit = limit
	f.gotExcludeIDs = excludeIDs
	return f.tracks, f.personalized, nil
}

func (f *fakeSuggestionsService) QueueStats() suggestions.QueueStats {
	return suggestions.QueueStats{CurrentSize: 3, MaxCapacity: 100}
}

type fakeWorkerControl struct {
	refillOK bool
}

func (f *fakeWorkerControl) TriggerRefill(_ context.Context) bool {
	return f.refillOK
}

func (f *fakeWorkerControl) Stats() suggestions.WorkerStats {
	return suggestions.WorkerStats{Running: true}
}

func TestGetSuggestions_ParsesQueryParams(t *testing.T) {
	svc := &fakeSuggestionsService{
		tracks: []personalization.ScoredTrack{
			{Track: domain.Track{CatalogID: "1"}, Score: 12},
		},
	}
	h := NewSuggestionsHandler(svc, &fakeWorkerControl{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=7&excludeIds=1,%202,,3", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetSuggestions(c); err != nil {
		t.Fatal(err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if svc.gotLimit != 7 {
		t.Fatalf("limit = %d, want 7", svc.gotLimit)
	}
	if len(svc.gotExcludeIDs) != 3 || svc.gotExcludeIDs[1] != "2" {
		t.Fatalf("excludeIds = %v, want trimmed non-empty ids", svc.gotExcludeIDs)
	}
	if svc.gotUserID != nil {
		t.Fatal("anonymous request should carry no user id")
	}
}

func TestGetSuggestions_RejectsBadLimit(t *testing.T) {
	h := NewSuggestionsHandler(&fakeSuggestionsService{}, &fakeWorkerControl{})

	e := echo.New()
	for _, raw := range []string{"abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodGet, "/?limit="+raw, nil)
		rec := httptest.NewRecorder()

		if err := h.GetSuggestions(e.NewContext(req, rec)); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("limit=%q: status = %d, want 400", raw, rec.Code)
		}
	}
}

func TestGetSuggestions_ForwardsAuthenticatedUser(t *testing.T) {
	svc := &fakeSuggestionsService{personalized: true}
	h := NewSuggestionsHandler(svc, &fakeWorkerControl{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint(42))

	if err := h.GetSuggestions(c); err != nil {
		t.Fatal(err)
	}

	if svc.gotUserID == nil || *svc.gotUserID != 42 {
		t.Fatalf("user id = %v, want 42", svc.gotUserID)
	}

	want, err := json.Marshal(fres.Response.StatusOK(SuggestionsResponse{
		Personalized: true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := bytes.TrimSpace(rec.Body.Bytes()); !bytes.Equal(got, want) {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestTriggerRefill_ConflictWhenBusy(t *testing.T) {
	h := NewSuggestionsHandler(&fakeSuggestionsService{}, &fakeWorkerControl{refillOK: false})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	if err := h.TriggerRefill(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestTriggerRefill_Accepted(t *testing.T) {
	h := NewSuggestionsHandler(&fakeSuggestionsService{}, &fakeWorkerControl{refillOK: true})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	if err := h.TriggerRefill(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}
}
