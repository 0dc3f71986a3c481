package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/payroll"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/schedule"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_DomainRules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		err        error
		wantHTTP   int
		wantReason string
	}{
		{name: "market closed", err: fmt.Errorf("%w: blackout", market.ErrMarketClosed), wantHTTP: http.StatusUnprocessableEntity, wantReason: "marketClosed"},
		{name: "bad increment", err: market.ErrBadIncrement, wantHTTP: http.StatusBadRequest, wantReason: "badIncrement"},
		{name: "self leading", err: market.ErrSelfLeading, wantHTTP: http.StatusBadRequest, wantReason: "selfLeading"},
		{name: "insufficient funds", err: fmt.Errorf("%w: balance=10", wallet.ErrInsufficientFunds), wantHTTP: http.StatusUnprocessableEntity, wantReason: "insufficientFunds"},
		{name: "player taken", err: fmt.Errorf("%w: player=p1", roster.ErrPlayerTaken), wantHTTP: http.StatusConflict, wantReason: "playerTaken"},
		{name: "already settled", err: payroll.ErrAlreadySettled, wantHTTP: http.StatusConflict, wantReason: "alreadySettled"},
		{name: "roster full", err: roster.ErrRosterFull, wantHTTP: http.StatusUnprocessableEntity, wantReason: "rosterFull"},
		{name: "not owner", err: roster.ErrNotOwner, wantHTTP: http.StatusUnprocessableEntity, wantReason: "notOwner"},
		{name: "below minimum price", err: roster.ErrBelowMinimumPrice, wantHTTP: http.StatusUnprocessableEntity, wantReason: "belowMinimumPrice"},
		{name: "outside league hours", err: schedule.ErrOutsideLeagueHours, wantHTTP: http.StatusUnprocessableEntity, wantReason: "outsideLeagueHours"},
		{name: "owner unavailable", err: schedule.ErrOwnerUnavailable, wantHTTP: http.StatusUnprocessableEntity, wantReason: "ownerUnavailable"},
		{name: "slot conflict", err: schedule.ErrSlotConflict, wantHTTP: http.StatusUnprocessableEntity, wantReason: "slotConflict"},
		{name: "notice too short", err: schedule.ErrNoticeTooShort, wantHTTP: http.StatusUnprocessableEntity, wantReason: "noticeTooShort"},
		{name: "reschedule budget", err: schedule.ErrRescheduleBudget, wantHTTP: http.StatusUnprocessableEntity, wantReason: "rescheduleBudget"},
		{name: "proposal closed", err: market.ErrProposalClosed, wantHTTP: http.StatusConflict, wantReason: "proposalClosed"},
		{name: "tx conflict", err: fmt.Errorf("atomic: %w", uow.ErrConflict), wantHTTP: http.StatusConflict, wantReason: "conflict"},
		{name: "retry exhausted", err: usecase.ErrRetryExhausted, wantHTTP: http.StatusConflict, wantReason: "conflict"},
		{name: "unknown", err: fmt.Errorf("boom"), wantHTTP: http.StatusInternalServerError, wantReason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapError(ctx, tt.err)
			if mapped.HTTPStatus != tt.wantHTTP {
				t.Fatalf("http status: got %d want %d", mapped.HTTPStatus, tt.wantHTTP)
			}
			if mapped.Reason != tt.wantReason {
				t.Fatalf("reason: got %q want %q", mapped.Reason, tt.wantReason)
			}
		})
	}
}
