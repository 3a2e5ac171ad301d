package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/iho/masjid-console/internal/domain"
)

// maxEnvelopeDepth bounds {"data": {"data": ...}} unwrapping, which Laravel
// produces for paginated resources.
const maxEnvelopeDepth = 2

// decodeData decodes a bare payload or one wrapped in {"data": ...} into out.
func decodeData(body []byte, out any) error {
	payload := bytes.TrimSpace(body)

	for depth := 0; depth <= maxEnvelopeDepth; depth++ {
		if len(payload) == 0 {
			return fmt.Errorf("%w: empty payload", domain.ErrMalformedPayload)
		}

		switch payload[0] {
		case '[':
			return unmarshalStrict(payload, out)
		case '{':
			var envelope map[string]json.RawMessage
			if err := json.Unmarshal(payload, &envelope); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
			}
			inner, ok := envelope["data"]
			if !ok {
				return unmarshalStrict(payload, out)
			}
			payload = bytes.TrimSpace(inner)
		default:
			return fmt.Errorf("%w: unexpected payload %.32q", domain.ErrMalformedPayload, payload)
		}
	}

	return fmt.Errorf("%w: envelope nested too deep", domain.ErrMalformedPayload)
}

func unmarshalStrict(payload []byte, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return nil
}

// errorBody is the Laravel error shape.
type errorBody struct {
	Message string                     `json:"message"`
	Error   string                     `json:"error"`
	Errors  map[string]json.RawMessage `json:"errors"`
}

// parseErrorResponse maps a non-2xx response to a domain error.
func parseErrorResponse(status int, body []byte) error {
	var eb errorBody
	known := json.Unmarshal(body, &eb) == nil

	message := eb.Message
	if message == "" {
		message = eb.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	switch status {
	case http.StatusUnauthorized:
		return &domain.ExternalServiceError{Service: serviceName, StatusCode: status, Err: domain.ErrUnauthorized}
	case http.StatusForbidden:
		return &domain.ExternalServiceError{Service: serviceName, StatusCode: status, Err: domain.ErrForbidden}
	case http.StatusNotFound:
		return &domain.ExternalServiceError{Service: serviceName, StatusCode: status, Err: domain.ErrNotFound}
	case http.StatusUnprocessableEntity:
		if known {
			return &domain.FieldErrors{Message: message, Fields: flattenFieldErrors(eb.Errors)}
		}
		return &domain.FieldErrors{Message: "Data tidak valid"}
	}

	return &domain.ExternalServiceError{
		Service:    serviceName,
		StatusCode: status,
		Err:        fmt.Errorf("%s", strings.TrimSpace(message)),
	}
}

// flattenFieldErrors keeps the first message per field. Values may be a
// list of strings or a single string; other shapes are skipped.
func flattenFieldErrors(raw map[string]json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			if len(list) > 0 {
				fields[k] = list[0]
			}
			continue
		}
		var single string
		if err := json.Unmarshal(v, &single); err == nil && single != "" {
			fields[k] = single
		}
	}

	return fields
}
