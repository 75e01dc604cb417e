package handler

import (
	"encoding/json"
	"net/http"

	"github.com/voxwallet/walletd/internal/apperr"
	"github.com/voxwallet/walletd/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	writeJSON(w, statusFor(kind), model.ErrorResponse{
		Error:  err.Error(),
		Code:   string(kind),
		Reason: string(apperr.ReasonOf(err)),
	})
}

// statusFor maps the error taxonomy onto HTTP statuses. Raw platform errors
// never reach the caller with a 2xx shape.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalidKeyFormat,
		apperr.KindInvalidMnemonic,
		apperr.KindInvalidAddress,
		apperr.KindInvalidAmount,
		apperr.KindUnknownNetwork:
		return http.StatusBadRequest
	case apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindMissingKey:
		return http.StatusNotFound
	case apperr.KindWalletExists, apperr.KindTransferInProgress:
		return http.StatusConflict
	case apperr.KindNetworkConnection, apperr.KindBalanceQuery, apperr.KindBroadcast:
		return http.StatusBadGateway
	case apperr.KindConfirmationTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
