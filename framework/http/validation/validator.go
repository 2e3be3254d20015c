package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ── Error bag ────────────────────────────────────────────────────────────────

// Errors collects failure messages per field — mirrors Laravel's MessageBag.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"email": "required|email", "age": "required|numeric|min:18"}
type Rules map[string]string

// Validator validates a flat map of input values. Validation runs once, on
// the first call to Fails, Passes, Errors or Validated; later calls reuse
// the result.
type Validator struct {
	data     map[string]string
	rules    Rules
	messages map[string]string
	errors   *Errors
	ran      bool
}

// Make creates a new Validator — mirrors Validator::make($data, $rules).
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// WithMessages overrides failure messages per "field.rule" key — Laravel's
// third Validator::make argument.
//
//	// Laravel: Validator::make($data, $rules, ['email.required' => 'We need your email.'])
//	v := validation.Make(data, rules).WithMessages(map[string]string{
//	    "email.required": "We need your email address.",
//	})
func (v *Validator) WithMessages(messages map[string]string) *Validator {
	v.messages = messages
	return v
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.run()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors {
	v.run()
	return v.errors
}

// Validated returns the input values whose rules all passed — mirrors
// $validator->validated(). Fields without rules, and fields absent from
// the input, are left out.
func (v *Validator) Validated() map[string]string {
	v.run()
	out := make(map[string]string, len(v.rules))
	for field := range v.rules {
		if _, failed := v.errors.Bag[field]; failed {
			continue
		}
		if val, ok := v.data[field]; ok {
			out[field] = val
		}
	}
	return out
}

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) run() {
	if v.ran {
		return
	}
	v.ran = true

	for field, line := range v.rules {
		v.checkField(field, line)
	}
}

func (v *Validator) checkField(field, line string) {
	value, present := v.data[field]

	for _, raw := range strings.Split(line, "|") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		// min:3 → name=min, param=3
		name, param, _ := strings.Cut(raw, ":")

		// Control rules short-circuit the whole chain without a message.
		switch name {
		case "nullable":
			if value == "" {
				return
			}
			continue
		case "sometimes":
			if !present {
				return
			}
			continue
		}

		check, ok := checks[name]
		if !ok {
			// Unknown rule names are ignored, as are no-ops like "string".
			continue
		}

		if msg := check(v, field, value, param); msg != "" {
			if custom, ok := v.messages[field+"."+name]; ok {
				msg = custom
			}
			v.errors.add(field, msg)
			return // bail on first failure per field, like Laravel
		}
	}
}

// ── Rule checks ──────────────────────────────────────────────────────────────

// A checkFn inspects one value under one rule. It returns "" when the value
// passes, or the failure message.
type checkFn func(v *Validator, field, value, param string) string

var (
	alphaRe     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	urlRe       = regexp.MustCompile(`^https?://`)
)

var boolWords = map[string]bool{
	"true": true, "false": true, "1": true, "0": true, "yes": true, "no": true,
}

var checks = map[string]checkFn{
	"required": func(_ *Validator, field, value, _ string) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	},

	"numeric": func(_ *Validator, field, value, _ string) string {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Sprintf("The %s must be a number.", field)
		}
		return ""
	},

	"integer": func(_ *Validator, field, value, _ string) string {
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("The %s must be an integer.", field)
		}
		return ""
	},

	"boolean": func(_ *Validator, field, value, _ string) string {
		if !boolWords[strings.ToLower(value)] {
			return fmt.Sprintf("The %s field must be true or false.", field)
		}
		return ""
	},

	"email": func(_ *Validator, field, value, _ string) string {
		if _, err := mail.ParseAddress(value); err != nil {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
		return ""
	},

	"url": func(_ *Validator, field, value, _ string) string {
		if !urlRe.MatchString(value) {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
		return ""
	},

	"min": func(_ *Validator, field, value, param string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("The %s must be at least %d characters.", field, n)
		}
		return ""
	},

	"max": func(_ *Validator, field, value, param string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("The %s may not be greater than %d characters.", field, n)
		}
		return ""
	},

	"size": func(_ *Validator, field, value, param string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) != n {
			return fmt.Sprintf("The %s must be %d characters.", field, n)
		}
		return ""
	},

	"between": func(_ *Validator, field, value, param string) string {
		lo, hi, ok := strings.Cut(param, ",")
		if !ok {
			return ""
		}
		low, _ := strconv.Atoi(strings.TrimSpace(lo))
		high, _ := strconv.Atoi(strings.TrimSpace(hi))
		if l := utf8.RuneCountInString(value); l < low || l > high {
			return fmt.Sprintf("The %s must be between %d and %d characters.", field, low, high)
		}
		return ""
	},

	"in": func(_ *Validator, field, value, param string) string {
		for _, a := range strings.Split(param, ",") {
			if strings.TrimSpace(a) == value {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	},

	"not_in": func(_ *Validator, field, value, param string) string {
		for _, d := range strings.Split(param, ",") {
			if strings.TrimSpace(d) == value {
				return fmt.Sprintf("The selected %s is invalid.", field)
			}
		}
		return ""
	},

	"confirmed": func(v *Validator, field, value, _ string) string {
		if v.data[field+"_confirmation"] != value {
			return fmt.Sprintf("The %s confirmation does not match.", field)
		}
		return ""
	},

	"same": func(v *Validator, field, value, param string) string {
		if v.data[param] != value {
			return fmt.Sprintf("The %s and %s must match.", field, param)
		}
		return ""
	},

	"different": func(v *Validator, field, value, param string) string {
		if v.data[param] == value {
			return fmt.Sprintf("The %s and %s must be different.", field, param)
		}
		return ""
	},

	"alpha": func(_ *Validator, field, value, _ string) string {
		if !alphaRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters.", field)
		}
		return ""
	},

	"alpha_num": func(_ *Validator, field, value, _ string) string {
		if !alphaNumRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters and numbers.", field)
		}
		return ""
	},

	"alpha_dash": func(_ *Validator, field, value, _ string) string {
		if !alphaDashRe.MatchString(value) {
			return fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field)
		}
		return ""
	},

	"regex": func(_ *Validator, field, value, param string) string {
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			return fmt.Sprintf("The %s format is invalid.", field)
		}
		return ""
	},

	"gt":  compare("gt", "The %s must be greater than %s."),
	"gte": compare("gte", "The %s must be greater than or equal to %s."),
	"lt":  compare("lt", "The %s must be less than %s."),
	"lte": compare("lte", "The %s must be less than or equal to %s."),
}

// compare builds the numeric comparison checks, which differ only in operator
// and message.
func compare(op, msg string) checkFn {
	return func(_ *Validator, field, value, param string) string {
		f, _ := strconv.ParseFloat(value, 64)
		limit, _ := strconv.ParseFloat(param, 64)
		var ok bool
		switch op {
		case "gt":
			ok = f > limit
		case "gte":
			ok = f >= limit
		case "lt":
			ok = f < limit
		case "lte":
			ok = f <= limit
		}
		if !ok {
			return fmt.Sprintf(msg, field, param)
		}
		return ""
	}
}
