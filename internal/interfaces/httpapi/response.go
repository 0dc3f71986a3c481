package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/fixture"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/market"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/payroll"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/roster"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/schedule"
	"github.com/sampaiofree/temporadaonline-sub001/internal/domain/wallet"
	"github.com/sampaiofree/temporadaonline-sub001/internal/platform/uow"
	"github.com/sampaiofree/temporadaonline-sub001/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "temporada-online"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: err.Error(),
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: err.Error(),
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	const msg = "internal server error"

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: msg,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  "internalError",
					Message: msg,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	ctx, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "invalidInput",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, usecase.ErrNotFound):
		return mappedError{
			HTTPStatus: http.StatusNotFound,
			Reason:     "notFound",
			Status:     "NOT_FOUND",
		}
	case errors.Is(err, usecase.ErrUnauthorized):
		return mappedError{
			HTTPStatus: http.StatusUnauthorized,
			Reason:     "unauthorized",
			Status:     "UNAUTHENTICATED",
		}
	case errors.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Reason:     "dependencyUnavailable",
			Status:     "UNAVAILABLE",
		}
	case errors.Is(err, usecase.ErrRetryExhausted),
		errors.Is(err, uow.ErrConflict):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "conflict",
			Status:     "ABORTED",
		}
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "insufficientFunds",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, market.ErrMarketClosed):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "marketClosed",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, market.ErrSelfLeading):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "selfLeading",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, market.ErrBadIncrement):
		return mappedError{
			HTTPStatus: http.StatusBadRequest,
			Reason:     "badIncrement",
			Status:     "INVALID_ARGUMENT",
		}
	case errors.Is(err, market.ErrProposalClosed):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "proposalClosed",
			Status:     "ABORTED",
		}
	case errors.Is(err, roster.ErrPlayerTaken):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "playerTaken",
			Status:     "ALREADY_EXISTS",
		}
	case errors.Is(err, payroll.ErrAlreadySettled):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "alreadySettled",
			Status:     "ALREADY_EXISTS",
		}
	case errors.Is(err, roster.ErrRosterFull):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "rosterFull",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, roster.ErrNotOwner):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "notOwner",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, roster.ErrBelowMinimumPrice):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "belowMinimumPrice",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, fixture.ErrInvalidTransition):
		return mappedError{
			HTTPStatus: http.StatusConflict,
			Reason:     "invalidTransition",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, schedule.ErrOutsideLeagueHours):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "outsideLeagueHours",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, schedule.ErrOwnerUnavailable):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "ownerUnavailable",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, schedule.ErrSlotConflict):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "slotConflict",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, schedule.ErrNoticeTooShort):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "noticeTooShort",
			Status:     "FAILED_PRECONDITION",
		}
	case errors.Is(err, schedule.ErrRescheduleBudget):
		return mappedError{
			HTTPStatus: http.StatusUnprocessableEntity,
			Reason:     "rescheduleBudget",
			Status:     "FAILED_PRECONDITION",
		}
	default:
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Reason:     "internalError",
			Status:     "INTERNAL",
		}
	}
}
