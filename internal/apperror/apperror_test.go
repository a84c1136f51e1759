package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/BppleMan/convertor/sdk/cache"
	"github.com/BppleMan/convertor/sdk/parser"
	"github.com/BppleMan/convertor/sdk/providerapi"
	"github.com/BppleMan/convertor/sdk/renderer"
	"github.com/BppleMan/convertor/sdk/urlquery"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus int
	}{
		{
			name:       "request error is 400",
			err:        &urlquery.RequestError{Kind: urlquery.RequestUnknownProvider, Key: "acme"},
			wantCode:   codeRequestError,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "query decrypt failure is 400",
			err:        &urlquery.QueryError{Kind: urlquery.QueryDecryptFailed},
			wantCode:   codeQueryDecrypt,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "query secret mismatch is 401",
			err:        &urlquery.QueryError{Kind: urlquery.QuerySecretMismatch},
			wantCode:   codeQuerySecret,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "url builder error is 400",
			err:        &urlquery.UrlBuilderError{Reason: "missing host"},
			wantCode:   codeUrlBuilderError,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "parse error is 500",
			err:        &parser.ParseError{Reason: "bad section"},
			wantCode:   codeParseError,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "render error is 500",
			err:        &renderer.RenderError{Reason: "unreachable profile variant"},
			wantCode:   codeRenderError,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "provider api failure is 500",
			err:        &providerapi.ApiFailed{Method: "GET", URL: "https://acme.example.com", StatusCode: 502},
			wantCode:   codeProviderError,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unrecognized error is internal",
			err:        errors.New("boom"),
			wantCode:   codeInternal,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, httpCode := Classify(tc.err)
			if status.Code != tc.wantCode {
				t.Fatalf("code = %d, want %d", status.Code, tc.wantCode)
			}
			if httpCode != tc.wantStatus {
				t.Fatalf("http status = %d, want %d", httpCode, tc.wantStatus)
			}
			if status.Message == "" {
				t.Fatal("expected a non-empty message")
			}
		})
	}
}

func TestClassifyCacheErrorRecursesIntoCause(t *testing.T) {
	cause := &urlquery.RequestError{Kind: urlquery.RequestUnknownProvider, Key: "acme"}
	err := &cache.Error{Key: "profile:acme", Cause: cause}

	status, httpCode := Classify(err)

	if httpCode != http.StatusBadRequest {
		t.Fatalf("http status = %d, want %d", httpCode, http.StatusBadRequest)
	}
	wantCode := codeCacheError + (codeRequestError % 100)
	if status.Code != wantCode {
		t.Fatalf("code = %d, want %d", status.Code, wantCode)
	}
}
