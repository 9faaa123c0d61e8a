package elasticsearch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Sentinel errors.
var (
	// ErrNoSchema is returned by mapping operations on an index without a schema.
	ErrNoSchema = errors.New("index has no schema")
	// ErrIndexMissing is returned when the index does not exist in the cluster.
	ErrIndexMissing = errors.New("index does not exist")
)

// ResponseError is an error response returned by Elasticsearch.
type ResponseError struct {
	StatusCode int
	Type       string
	Reason     string
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("elasticsearch [%d] %s: %s", e.StatusCode, e.Type, e.Reason)
	}
	return fmt.Sprintf("elasticsearch [%d]: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusNotFound
}

// parseResponseError reads an error response body. The "error" member is
// either an object with type and reason or a plain string.
func parseResponseError(res *esapi.Response) error {
	re := &ResponseError{StatusCode: res.StatusCode}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		re.Body = fmt.Sprintf("failed to read error response body: %v", err)
		return re
	}
	re.Body = string(body)

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal(body, &envelope) != nil || len(envelope.Error) == 0 {
		return re
	}

	var detail struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}
	if json.Unmarshal(envelope.Error, &detail) == nil {
		re.Type, re.Reason = detail.Type, detail.Reason
		return re
	}

	var reason string
	if json.Unmarshal(envelope.Error, &reason) == nil {
		re.Reason = reason
		re.Body = reason
	}
	return re
}
