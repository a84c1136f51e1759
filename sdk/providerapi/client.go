package providerapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var errInvalidJSON = errors.New("providerapi: response body is not valid JSON")

// redactedBodyFields are stripped from an upstream response body before it
// is attached to a log line, since a provider's error payload can echo back
// the credentials or token that were sent (§6 "never logs secret/enc_secret").
var redactedBodyFields = []string{"password", "token", "access_token", "auth_token", "authorization"}

// redactBody removes redactedBodyFields from a JSON response body for
// logging. Paths that are absent are left alone; a non-JSON body is reported
// as-is since sjson has nothing to strip.
func redactBody(body []byte) string {
	redacted := body
	for _, path := range redactedBodyFields {
		if out, err := sjson.DeleteBytes(redacted, path); err == nil {
			redacted = out
		}
	}
	return string(redacted)
}

// execute sends req through the shared http.Client, injecting the
// provider's static extra headers (skipping empty values), then
// transparently decompresses the response body if the provider sent one
// compressed despite Go's transport not requesting it (§4.I "execute").
func execute(ctx context.Context, httpClient *http.Client, cfg Config, req *http.Request) (*http.Response, []byte, error) {
	req = req.WithContext(ctx)
	for name, value := range cfg.Headers {
		if value == "" {
			continue
		}
		req.Header.Set(name, value)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := decompressBody(resp)
	if err != nil {
		return resp, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logrus.WithFields(logrus.Fields{
			"method": req.Method,
			"url":    req.URL.String(),
			"status": resp.StatusCode,
			"body":   redactBody(body),
		}).Warn("providerapi: upstream request failed")
		return resp, body, &ApiFailed{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			Body:       string(body),
		}
	}

	return resp, body, nil
}

func decompressBody(resp *http.Response) ([]byte, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "br":
		return io.ReadAll(brotli.NewReader(resp.Body))
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "deflate":
		r, err := zlib.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	default:
		return io.ReadAll(resp.Body)
	}
}

// extractJSONPath applies a gjson path to body, distinguishing "not found"
// from a malformed-path/body failure (§4.I JsonPathError/JsonPathNotFound).
func extractJSONPath(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", &JsonPathError{Path: path, Err: errInvalidJSON}
	}
	result := gjson.GetBytes(body, path)
	if !result.Exists() {
		return "", &JsonPathNotFound{Path: path}
	}
	return result.String(), nil
}
