package intake

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxFormMemory bounds in-memory buffering of multipart bodies.
const maxFormMemory = 1 << 20

// DecodeBody parses the request body into a flat field map based on the
// Content-Type header. JSON bodies that are valid but not objects decode to
// an empty map. Form and multipart bodies keep string values only; file
// parts are dropped.
func DecodeBody(r *http.Request) (Fields, error) {
	contentType := r.Header.Get("Content-Type")

	switch {
	case strings.Contains(contentType, "application/json"):
		var raw any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("intake: decode json body: %w", err)
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return Fields{}, nil
		}
		return Fields(obj), nil

	case strings.Contains(contentType, "multipart/form-data"):
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("intake: parse multipart body: %w", err)
		}
		fields := Fields{}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		return fields, nil

	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("intake: parse form body: %w", err)
		}
		fields := Fields{}
		for key, values := range r.PostForm {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}
		return fields, nil
	}
}
