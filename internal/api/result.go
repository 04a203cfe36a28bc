package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind tags the variant held by a Result.
type Kind int

const (
	// KindOK carries the decoded entity or list.
	KindOK Kind = iota
	// KindValidationFailed carries the structured {property, constraints} list.
	KindValidationFailed
	// KindTransportFailed covers network errors, timeouts and any non-2xx response
	// without the structured validation shape.
	KindTransportFailed
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidationFailed:
		return "validation_failed"
	default:
		return "transport_failed"
	}
}

// Result is the only shape the API boundary hands to callers.
type Result struct {
	Kind       Kind
	Status     int
	Record     Record
	Records    []Record
	Violations []Violation
	Err        error
}

// OK reports whether the call succeeded.
func (r Result) OK() bool { return r.Kind == KindOK }

// Failed builds a transport failure result.
func Failed(status int, err error) Result {
	return Result{Kind: KindTransportFailed, Status: status, Err: err}
}

// Record is a decoded JSON object as returned by the API.
type Record map[string]any

// ID returns the record id. Ids are always strings on the wire.
func (r Record) ID() string {
	if id, ok := r["id"].(string); ok {
		return id
	}
	return ""
}

// Lookup resolves a dotted path such as "sourceVault.id".
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String resolves path and formats scalar values; missing and null values yield "".
func (r Record) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		return ""
	}
}

// Violation is one entry of the structured validation error.
type Violation struct {
	Property    string      `json:"property"`
	Constraints Constraints `json:"constraints"`
}

// Constraint is a single failed rule, e.g. {isEmail: "email must be an email"}.
type Constraint struct {
	Key     string
	Message string
}

// Constraints keeps the order in which the server listed failed rules so the
// first one can be reported.
type Constraints []Constraint

// UnmarshalJSON decodes a JSON object preserving key order.
func (c *Constraints) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("api: constraints must be an object")
	}
	var out Constraints
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var msg any
		if err := dec.Decode(&msg); err != nil {
			return err
		}
		text, _ := msg.(string)
		out = append(out, Constraint{Key: key, Message: text})
	}
	*c = out
	return nil
}

// MarshalJSON encodes the constraints back into an object.
func (c Constraints) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		msg, err := json.Marshal(item.Message)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msg)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
