package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	errs "github.com/matzehuels/craneplan/pkg/errors"
)

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidInput, errs.ErrCodeInvalidManifest, errs.ErrCodeInvalidRequest, errs.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errs.ErrCodeInvalidPlan, errs.ErrCodeInfeasible, errs.ErrCodeExhausted:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeNotFound, errs.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errs.ErrCodeCanceled:
		return http.StatusServiceUnavailable
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := ErrorResponse{Code: string(errs.GetCode(err)), Message: errs.UserMessage(err)}
	if resp.Code == "" {
		resp.Code = string(errs.ErrCodeInternal)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		status = http.StatusBadRequest
		resp.Code = string(errs.ErrCodeInvalidRequest)
		resp.Message = "request failed validation"
		for _, fe := range verrs {
			resp.Fields = append(resp.Fields, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		if status == http.StatusInternalServerError {
			resp.Message = "internal error"
		}
	}
	writeJSON(w, status, resp)
}
