package growthplan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StepDraft is a growth step as the generator described it, before sequencing.
type StepDraft struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
}

// Candidate is one validated plant plan.
type Candidate struct {
	Name            string      `json:"name"`
	Description     string      `json:"description"`
	SuccessRate     string      `json:"successRate"`
	DifficultyLevel string      `json:"difficultyLevel"`
	Steps           []StepDraft `json:"steps"`
}

// Result holds validated candidates, or a rejection when the generator refused
// the request (for example the plant name was not a real plant).
type Result struct {
	Candidates      []Candidate
	Rejected        bool
	RejectionReason string
}

var requiredPlantFields = []string{"name", "description", "successRate", "steps", "difficultyLevel"}

var requiredStepFields = []string{"title", "description", "estimatedTime"}

const defaultRejection = "the requested plant could not be validated"

// Parse turns raw generator output into validated candidates of the expected shape.
func Parse(raw string, want Shape) (*Result, error) {
	payload, err := decodePayload(raw, want)
	if err != nil {
		return nil, err
	}

	switch v := payload.(type) {
	case map[string]any:
		if explicitlyInvalid(v) {
			return &Result{Rejected: true, RejectionReason: rejectionReason(v)}, nil
		}
		c, err := candidateFrom(v)
		if err != nil {
			return nil, err
		}
		return &Result{Candidates: []Candidate{c}}, nil
	case []any:
		out := &Result{Candidates: make([]Candidate, 0, len(v))}
		for i, el := range v {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, shapeErr("element %d is %s, want object", i, jsonKind(el))
			}
			if explicitlyInvalid(obj) {
				continue
			}
			c, err := candidateFrom(obj)
			if err != nil {
				return nil, err
			}
			out.Candidates = append(out.Candidates, c)
		}
		return out, nil
	default:
		return nil, shapeErr("top level is %s", jsonKind(payload))
	}
}

func decodePayload(raw string, want Shape) (any, error) {
	extracted, err := Extract(raw, want)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(extracted)))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, &ParseError{Kind: ErrMalformedJSON, Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Kind: ErrMalformedJSON, Err: fmt.Errorf("trailing data after %s", want)}
	}

	switch payload.(type) {
	case map[string]any:
		if want != ShapeObject {
			return nil, shapeErr("got object, want %s", want)
		}
	case []any:
		if want != ShapeArray {
			return nil, shapeErr("got array, want %s", want)
		}
	default:
		return nil, shapeErr("got %s, want %s", jsonKind(payload), want)
	}
	return payload, nil
}

func candidateFrom(obj map[string]any) (Candidate, error) {
	for _, f := range requiredPlantFields {
		if f == "steps" {
			continue
		}
		if _, ok := textField(obj, f); !ok {
			return Candidate{}, missing(f)
		}
	}
	steps, err := stepsFrom(obj, "steps")
	if err != nil {
		return Candidate{}, err
	}
	if len(steps) == 0 {
		return Candidate{}, missing("steps")
	}

	name, _ := textField(obj, "name")
	desc, _ := textField(obj, "description")
	rate, _ := textField(obj, "successRate")
	level, _ := textField(obj, "difficultyLevel")
	return Candidate{
		Name:            name,
		Description:     desc,
		SuccessRate:     rate,
		DifficultyLevel: level,
		Steps:           steps,
	}, nil
}

func stepsFrom(obj map[string]any, key string) ([]StepDraft, error) {
	raw, ok := obj[key]
	if !ok || strings.TrimSpace(toText(raw)) == "" {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, shapeErr("%s is %s, want array", key, jsonKind(raw))
	}
	out := make([]StepDraft, 0, len(list))
	for i, el := range list {
		step, ok := el.(map[string]any)
		if !ok {
			return nil, shapeErr("%s[%d] is %s, want object", key, i, jsonKind(el))
		}
		for _, f := range requiredStepFields {
			if _, ok := textField(step, f); !ok {
				return nil, missing(fmt.Sprintf("%s[%d].%s", key, i, f))
			}
		}
		title, _ := textField(step, "title")
		desc, _ := textField(step, "description")
		est, _ := textField(step, "estimatedTime")
		out = append(out, StepDraft{Title: title, Description: desc, EstimatedTime: est})
	}
	return out, nil
}

// textField coerces obj[key] to trimmed text; ok is false when absent or empty.
func textField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key]
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(toText(v))
	return s, s != ""
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		if len(t) == 0 {
			return ""
		}
		b, _ := json.Marshal(t)
		return string(b)
	case map[string]any:
		if len(t) == 0 {
			return ""
		}
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

// explicitlyInvalid reports an `isValid: false` sentinel (bool or "false").
func explicitlyInvalid(obj map[string]any) bool {
	v, ok := obj["isValid"]
	if !ok {
		return false
	}
	b, known := toBool(v)
	return known && !b
}

func toBool(v any) (value bool, known bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return b, err == nil
	case json.Number:
		n, err := t.Int64()
		return n != 0, err == nil
	default:
		return false, false
	}
}

func rejectionReason(obj map[string]any) string {
	for _, key := range []string{"reason", "message", "error"} {
		if s, ok := textField(obj, key); ok {
			return s
		}
	}
	return defaultRejection
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
