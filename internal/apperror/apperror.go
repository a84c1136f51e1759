// Package apperror maps every core error kind (spec §7) to a machine
// readable ApiStatus and an HTTP status code, the single point where
// sdk-level errors cross into the HTTP surface (internal/httpapi).
package apperror

import (
	"errors"
	"net/http"

	"github.com/BppleMan/convertor/sdk/cache"
	"github.com/BppleMan/convertor/sdk/parser"
	"github.com/BppleMan/convertor/sdk/providerapi"
	"github.com/BppleMan/convertor/sdk/renderer"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

// ApiStatus is the tagged (code, message) pair carried by every error
// response body (§6 "application/problem+json").
type ApiStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Status codes are namespaced by error kind so a client can distinguish
// "malformed request" from "upstream failure" without parsing the message.
const (
	codeRequestError    = 1000
	codeQueryDecrypt    = 1100
	codeQuerySecret     = 1101
	codeUrlBuilderError = 1200
	codeParseError      = 1300
	codeRenderError     = 1400
	codeProviderError   = 1500
	codeCacheError      = 1600
	codeInternal        = 1999
)

// Problem is the response body shape for every error response (§6).
type Problem struct {
	Status ApiStatus `json:"status"`
	Data   any       `json:"data"`
}

// Classify maps err to its ApiStatus and the HTTP status it surfaces as
// (§7 "Propagation policy": the HTTP layer converts at the edge).
func Classify(err error) (ApiStatus, int) {
	var reqErr *urlquery.RequestError
	if errors.As(err, &reqErr) {
		return ApiStatus{Code: codeRequestError, Message: reqErr.Error()}, http.StatusBadRequest
	}

	var queryErr *urlquery.QueryError
	if errors.As(err, &queryErr) {
		code := codeQueryDecrypt
		if queryErr.Kind == urlquery.QuerySecretMismatch {
			code = codeQuerySecret
		}
		return ApiStatus{Code: code, Message: queryErr.Error()}, queryErr.StatusCode()
	}

	var urlBuilderErr *urlquery.UrlBuilderError
	if errors.As(err, &urlBuilderErr) {
		return ApiStatus{Code: codeUrlBuilderError, Message: urlBuilderErr.Error()}, http.StatusBadRequest
	}

	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		return ApiStatus{Code: codeParseError, Message: parseErr.Error()}, http.StatusInternalServerError
	}

	var renderErr *renderer.RenderError
	if errors.As(err, &renderErr) {
		return ApiStatus{Code: codeRenderError, Message: renderErr.Error()}, http.StatusInternalServerError
	}

	var apiFailed *providerapi.ApiFailed
	if errors.As(err, &apiFailed) {
		return ApiStatus{Code: codeProviderError, Message: apiFailed.Error()}, http.StatusInternalServerError
	}

	var cacheErr *cache.Error
	if errors.As(err, &cacheErr) {
		status, httpCode := Classify(cacheErr.Cause)
		status.Code = codeCacheError + (status.Code % 100)
		return status, httpCode
	}

	return ApiStatus{Code: codeInternal, Message: err.Error()}, http.StatusInternalServerError
}
