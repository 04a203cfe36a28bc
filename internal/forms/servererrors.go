package forms

import "github.com/podkrepi-bg/admin/internal/api"

// constraintMessages maps class-validator constraint keys returned by the API
// to the message keys used for client-side rules.
var constraintMessages = map[string]string{
	"isNotEmpty":    "validation.required",
	"isDefined":     "validation.required",
	"isEmail":       "validation.email",
	"isUuid":        "validation.uuid",
	"isUUID":        "validation.uuid",
	"maxLength":     "validation.too-long",
	"minLength":     "validation.too-short",
	"isEnum":        "validation.oneof-server",
	"isIn":          "validation.oneof-server",
	"isPositive":    "validation.positive",
	"isNumber":      "validation.decimal",
	"isDate":        "validation.date",
	"isDateString":  "validation.date",
	"minDate":       "validation.notpast",
	"isString":      "validation.invalid",
	"isBoolean":     "validation.boolean",
	"matches":       "validation.invalid",
	"isPhoneNumber": "validation.phone",
}

// MatchConstraint translates the first known constraint into a message key.
func MatchConstraint(cs api.Constraints) Message {
	for _, c := range cs {
		if key, ok := constraintMessages[c.Key]; ok {
			return Message{Key: key}
		}
	}
	return Message{Key: "validation.invalid"}
}

// MapViolations maps server violations onto schema fields. Violations whose
// property is not a field of the schema are returned as unmatched.
func MapViolations(s *Schema, violations []api.Violation) (FieldErrors, []api.Violation) {
	errs := make(FieldErrors)
	var unmatched []api.Violation
	for _, v := range violations {
		if _, ok := s.Field(v.Property); !ok {
			unmatched = append(unmatched, v)
			continue
		}
		if _, seen := errs[v.Property]; seen {
			continue
		}
		errs[v.Property] = MatchConstraint(v.Constraints)
	}
	return errs, unmatched
}
