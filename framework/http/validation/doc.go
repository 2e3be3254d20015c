// Package validation provides Laravel-compatible input validation.
//
// Rules are expressed as pipe-separated strings on a map of field names,
// checked against a flat map of input values:
//
//	v := validation.Make(map[string]string{
//	    "name":  "Alice",
//	    "email": "alice@example.com",
//	}, validation.Rules{
//	    "name":  "required|min:2|max:100",
//	    "email": "required|email",
//	})
//
//	if v.Fails() {
//	    res.ValidationError(v.Errors())
//	    return
//	}
//	clean := v.Validated() // only the fields whose rules passed
//
// Validation runs once and is memoised; Fails, Passes, Errors and Validated
// can be called in any order. Per field, checking stops at the first failing
// rule, like Laravel's bail behaviour.
//
// Failure messages follow Laravel's wording and can be overridden per
// "field.rule" key:
//
//	v := validation.Make(data, rules).WithMessages(map[string]string{
//	    "email.required": "We need your email address.",
//	})
//
// # Available Rules
//
// Presence and length:
//   - required — field must be present and non-empty
//   - min:n / max:n / size:n — UTF-8 character count bounds
//   - between:lo,hi — length between lo and hi (inclusive)
//
// Character classes:
//   - alpha      — letters only [a-zA-Z]
//   - alpha_num  — letters and numbers
//   - alpha_dash — letters, numbers, dashes, underscores
//   - regex:pattern — must match the regexp pattern
//
// Formats:
//   - email — valid RFC 5322 email address
//   - url   — must start with http:// or https://
//
// Numbers:
//   - numeric — parseable as float64
//   - integer — parseable as int
//   - gt:n / gte:n / lt:n / lte:n — numeric comparisons
//
// Sets and cross-field:
//   - boolean — true/false/1/0/yes/no (case-insensitive)
//   - in:a,b,c / not_in:a,b,c — membership in a comma-separated list
//   - confirmed       — field_confirmation must match field
//   - same:other      — must equal data[other]
//   - different:other — must not equal data[other]
//
// Control rules:
//   - nullable  — an empty value passes and skips the remaining rules
//   - sometimes — an absent field skips all rules silently
//
// Unknown rule names are ignored, so Laravel rule strings containing no-ops
// like "string" validate cleanly.
//
// # Error Bag
//
// Errors serialise to the same JSON structure as Laravel's validation
// errors:
//
//	{
//	  "errors": {
//	    "email": ["The email field is required."],
//	    "age":   ["The age must be greater than or equal to 18."]
//	  }
//	}
package validation
