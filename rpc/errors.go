package rpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"safepump/native/asset"
	"safepump/native/common"
	"safepump/native/coordinator"
	"safepump/native/vault"
)

// statusFor maps an engine error onto an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrModulePaused), errors.Is(err, coordinator.ErrNotInitialized):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, asset.ErrAssetNotFound), errors.Is(err, coordinator.ErrAssetNotRegistered):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, vault.ErrVaultExists),
		errors.Is(err, asset.ErrTraderExists),
		errors.Is(err, asset.ErrAssetExists),
		errors.Is(err, coordinator.ErrAssetAlreadyRegistered):
		return http.StatusConflict, "conflict"
	case errors.Is(err, asset.ErrUnauthorized), errors.Is(err, coordinator.ErrUnauthorized):
		return http.StatusForbidden, "forbidden"
	}
	class := common.Classify(err)
	switch class {
	case common.ClassAuthentication:
		return http.StatusUnauthorized, string(class)
	case common.ClassAdmission:
		return http.StatusTooManyRequests, string(class)
	case common.ClassArithmetic:
		return http.StatusUnprocessableEntity, string(class)
	case common.ClassExternal:
		return http.StatusBadGateway, string(class)
	case common.ClassDistribution:
		return http.StatusConflict, string(class)
	default:
		return http.StatusBadRequest, string(common.ClassValidation)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, data interface{}) {
	if status <= 0 {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Error: &Error{Code: code, Message: message, Data: data}})
}

func writeEngineError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err.Error(), nil)
}

func writeResult(w http.ResponseWriter, status int, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Result: result})
}
