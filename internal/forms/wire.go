package forms

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/podkrepi-bg/admin/internal/api"
)

// FromRecord projects an API record onto form values.
func (s *Schema) FromRecord(record api.Record) Values {
	values := s.Defaults()
	if record == nil {
		return values
	}
	for _, f := range s.fields {
		raw := record.String(f.name)
		if raw == "" {
			for _, path := range f.from {
				if raw = record.String(path); raw != "" {
					break
				}
			}
		}
		values[f.name] = f.fromWire(raw)
	}
	return values
}

func (f *Field) fromWire(raw string) string {
	switch f.kind {
	case kindDate:
		if len(raw) >= len(dateLayout) {
			return raw[:len(dateLayout)]
		}
		return raw
	case kindNumber:
		if raw == "" {
			return ""
		}
		if d, err := decimal.NewFromString(raw); err == nil {
			return d.String()
		}
		return raw
	case kindBool:
		if raw == "true" {
			return "true"
		}
		return "false"
	default:
		return raw
	}
}

// Payload transforms values into the JSON body the API expects: empty optional
// fields become null, dates are date-only strings, numbers are JSON numbers and
// dependent select ids pass through verbatim.
func (s *Schema) Payload(values Values) map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		v := f.normalize(values[f.name])
		switch {
		case f.kind == kindBool:
			out[f.name] = v == "true"
		case v == "":
			out[f.name] = nil
		case f.kind == kindNumber:
			d, err := decimal.NewFromString(v)
			if err != nil {
				out[f.name] = nil
				continue
			}
			out[f.name] = json.Number(d.String())
		case f.kind == kindDate:
			out[f.name] = f.fromWire(v)
		default:
			out[f.name] = v
		}
	}
	return out
}
