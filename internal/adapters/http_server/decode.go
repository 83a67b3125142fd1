package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"aitrip_ai/internal/domain"
)

const maxBodyBytes = 1 << 20

// fieldError mirrors one entry of a 422 response: where, what and which rule.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func unprocessable(errs ...fieldError) *problem {
	return &problem{
		Type:   "about:blank",
		Title:  "Unprocessable Entity",
		Status: http.StatusUnprocessableEntity,
		Detail: "request body failed validation",
		Errors: errs,
	}
}

// decodeBody reads a JSON object into dst. It returns a problem when the body
// is missing, is not an object or has a field of the wrong type. Unknown
// fields are ignored.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) *problem {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return &problem{Type: "about:blank", Title: "Payload Too Large", Status: http.StatusRequestEntityTooLarge,
				Detail: "request body exceeds 1 MiB"}
		}
		return unprocessable(fieldError{Loc: []string{"body"}, Msg: "could not read body", Type: "body_read"})
	}

	body := bytes.TrimSpace(b)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return unprocessable(fieldError{Loc: []string{"body"}, Msg: "Field required", Type: "missing"})
	}
	if body[0] != '{' {
		return unprocessable(fieldError{Loc: []string{"body"}, Msg: "Input should be a valid object", Type: "model_attributes_type"})
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			loc := []string{"body"}
			if te.Field != "" {
				loc = append(loc, strings.Split(te.Field, ".")...)
			}
			name, noun := kindName(te.Type)
			return unprocessable(fieldError{Loc: loc, Msg: "Input should be a valid " + noun, Type: name + "_type"})
		}
		return unprocessable(fieldError{Loc: []string{"body"}, Msg: "JSON decode error: " + err.Error(), Type: "json_invalid"})
	}
	return nil
}

func kindName(t reflect.Type) (string, string) {
	if t == nil {
		return "model_attributes", "object"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int", "integer"
	case reflect.Float32, reflect.Float64:
		return "float", "number"
	case reflect.String:
		return "string", "string"
	case reflect.Bool:
		return "bool", "boolean"
	case reflect.Slice, reflect.Array:
		return "list", "list"
	case reflect.Pointer:
		return kindName(t.Elem())
	default:
		return "model_attributes", "object"
	}
}

// recommendationBody is the wire form of domain.RecommendationRequest.
// Preferences stay raw so an explicit null can be told apart from an absent key.
type recommendationBody struct {
	Destination  *string         `json:"destination"`
	Preferences  json.RawMessage `json:"preferences"`
	Budget       *string         `json:"budget"`
	DurationDays *int            `json:"duration_days"`
}

// request validates preferences as a list of strings; null is neither.
func (b recommendationBody) request() (domain.RecommendationRequest, *problem) {
	req := domain.RecommendationRequest{
		Destination:  b.Destination,
		Budget:       b.Budget,
		DurationDays: b.DurationDays,
	}
	if len(b.Preferences) == 0 {
		return req, nil
	}

	loc := []string{"body", "preferences"}
	var items []json.RawMessage
	if bytes.Equal(bytes.TrimSpace(b.Preferences), []byte("null")) || json.Unmarshal(b.Preferences, &items) != nil {
		return req, unprocessable(fieldError{Loc: loc, Msg: "Input should be a valid list", Type: "list_type"})
	}

	prefs := make([]string, 0, len(items))
	for i, raw := range items {
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil || s == nil {
			return req, unprocessable(fieldError{
				Loc:  append(loc, strconv.Itoa(i)),
				Msg:  "Input should be a valid string",
				Type: "string_type",
			})
		}
		prefs = append(prefs, *s)
	}
	req.Preferences = prefs
	return req, nil
}
