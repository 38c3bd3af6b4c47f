package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aussiebroadwan/vaultkey/pkg/httpx"
	"github.com/aussiebroadwan/vaultkey/pkg/vaultsdk"
)

const (
	maxBodyBytes         = 64 << 10
	maxRotationBodyBytes = 16 << 20 // a rotation carries the whole vault
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	httpx.WriteJSON(w, status, vaultsdk.APIError{Code: code, Message: msg})
}

func writeServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, vaultsdk.ErrorCodeServerError, "internal server error")
}

// decodeAndValidate decodes the body into v and validates it. It writes the
// 400 response itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, maxBytes int64, v any) bool {
	if err := httpx.DecodeJSON(w, r, maxBytes, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, vaultsdk.ErrorCodeInvalidRequest, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, vaultsdk.ErrorCodeInvalidRequest, "invalid JSON body")
		return false
	}

	err := validate.Struct(v)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, vaultsdk.ErrorCodeInvalidRequest, "invalid request")
		return false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = validationMessage(fe)
	}
	httpx.WriteJSON(w, http.StatusBadRequest, vaultsdk.APIError{
		Code:    vaultsdk.ErrorCodeValidation,
		Message: "request validation failed",
		Fields:  fields,
	})
	return false
}

// fieldPath drops the struct name from the namespace: "key_pair.public_key".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is not a valid email"
	case "numeric":
		return "must be numeric"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}
