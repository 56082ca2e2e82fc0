package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lintang-b-s/go-suggest/pkg"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type envelope map[string]any

// writeJSON marshals data structure to encoded JSON response.
func (api *suggestAPI) writeJSON(w http.ResponseWriter, status int, data any,
	headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	js = append(js, '\n')
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		api.log.Error("failed to write JSON response", zap.Error(err))
		return err
	}

	return nil
}

// readJSON decodes a single JSON value from the body into dst. An empty body is allowed when
// optional is set.
func (api *suggestAPI) readJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			if optional {
				return nil
			}
			return errors.New("body must not be empty")
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeErr):
			return fmt.Errorf("body contains incorrect JSON type for field %q", typeErr.Field)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown field %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxBytesErr):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesErr.Limit)
		default:
			return err
		}
	}

	if dec.More() {
		return errors.New("body must only contain a single JSON value")
	}
	return nil
}

// validate runs the struct validator and joins the translated messages.
func (api *suggestAPI) validate(v any) error {
	if err := api.validator.Struct(v); err != nil {
		vv := translateError(err, api.trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return fmt.Errorf("validation error: %v", vvString)
	}
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (api *suggestAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	var resp errorResponse
	resp.Error.Code = http.StatusText(status)
	resp.Error.Message = message

	if err := api.writeJSON(w, status, resp, nil); err != nil {
		api.log.Error("failed to write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *suggestAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("server error", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	api.errorResponse(w, r, http.StatusInternalServerError, pkg.MessageInternalServerError)
}

func (api *suggestAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (api *suggestAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (api *suggestAPI) ConflictResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusConflict, err.Error())
}

// getStatusCode maps the error code of err to an HTTP status.
func getStatusCode(err error) int {
	switch pkg.ErrorCode(err) {
	case pkg.ErrNotFound, pkg.ErrUnknownField:
		return http.StatusNotFound
	case pkg.ErrBadParamInput, pkg.ErrInvalidQuery, pkg.ErrUnknownAnalyzer:
		return http.StatusBadRequest
	case pkg.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (api *suggestAPI) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch getStatusCode(err) {
	case http.StatusNotFound:
		api.NotFoundResponse(w, r, err)
	case http.StatusBadRequest:
		api.BadRequestResponse(w, r, err)
	case http.StatusConflict:
		api.ConflictResponse(w, r, err)
	default:
		api.ServerErrorResponse(w, r, err)
	}
}
