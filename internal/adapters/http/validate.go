package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"gymhub/internal/adapters/resource"
)

// maxRequestBody caps JSON request bodies.
const maxRequestBody = 64 << 10

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		panic(fmt.Sprintf("register validator translations: %v", err))
	}
}

// translateErrors turns validation errors into field → message pairs.
// Errors that are not validation errors come back under "detail".
func translateErrors(err error) map[string]string {
	fields := make(map[string]string)
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}
	fields["detail"] = err.Error()
	return fields
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// bindJSON decodes and validates the body into dst. On failure it writes a
// 400 problem and returns false.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := strictDecode(r, dst); err != nil {
		writeProblem(w, r, resource.Problem{
			Status: http.StatusBadRequest,
			Code:   resource.CodeInvalid,
			Detail: "request body is not valid JSON for this endpoint",
		})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeProblem(w, r, resource.Problem{
			Status: http.StatusBadRequest,
			Code:   resource.CodeInvalid,
			Detail: "request failed validation",
			Fields: translateErrors(err),
		})
		return false
	}
	return true
}
