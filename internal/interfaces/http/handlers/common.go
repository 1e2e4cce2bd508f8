// Package handlers implements the HTTP endpoints of the estimation API.
// Every JSON response uses the common.APIResponse envelope.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/turtacn/simpol/internal/application/estimation"
	"github.com/turtacn/simpol/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simpol/pkg/errors"
	"github.com/turtacn/simpol/pkg/types/common"
)

// validate is shared; validator caches struct metadata per type.
var validate = validator.New()

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeData[T any](w http.ResponseWriter, r *http.Request, statusCode int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = chimw.GetReqID(r.Context())
	writeJSON(w, statusCode, resp)
}

// writeAppError maps err to its HTTP status through its error code.  Server
// errors are logged and their message replaced by the code's default.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	writeAppErrorWithData[any](w, r, logger, err, nil)
}

func writeAppErrorWithData[T any](w http.ResponseWriter, r *http.Request, logger logging.Logger, err error, data T) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatusForCode(code)
	detail := estimation.ErrorDetail(err)
	detail.Code = string(code)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context()).WithError(err).Error("request failed", logging.String(logging.FieldErrorCode, string(code)))
		detail = &common.ErrorDetail{Code: string(code), Message: errors.DefaultMessageForCode(code)}
	}

	resp := common.APIResponse[T]{
		Data:      data,
		Error:     detail,
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: common.NewTimestamp(),
	}
	writeJSON(w, status, resp)
}

// decodeJSON reads a size-limited JSON body into dest and validates it.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dest interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.InvalidParam("request body too large").WithDetailf("limit=%d bytes", maxBytes)
		}
		return errors.Wrap(err, errors.ErrCodeSerialization, "malformed JSON body").WithDetail(err.Error())
	}
	return validateRequest(dest)
}

// validateRequest runs the struct validator and folds its field errors into
// one validation error.
func validateRequest(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(err, errors.ErrCodeValidation, "invalid request")
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
		}
	}
	return errors.New(errors.ErrCodeValidation, "invalid request").WithDetail(strings.Join(parts, "; "))
}

//Personal.AI order the ending
