// Package passwordrules checks candidate passwords against the complexity
// rules applied to account and saved-site passwords.
package passwordrules

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinLength = 6
	MaxLength = 20

	// Forbidden lists characters that may not appear anywhere in a password.
	Forbidden = "_/,"
)

var (
	letterRe  = regexp.MustCompile(`[A-Za-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9_\s]`)
)

// Rule is a single named password check.
type Rule struct {
	Name    string
	Message string
	Check   func(p string) bool
}

// Violation names a rule a password failed.
type Violation struct {
	Rule    string
	Message string
}

// DefaultRules is the rule set applied by Validate, in reporting order.
var DefaultRules = []Rule{
	{
		Name:    "length",
		Message: "Password must be between 6 and 20 characters.",
		Check: func(p string) bool {
			n := utf8.RuneCountInString(p)
			return n >= MinLength && n <= MaxLength
		},
	},
	{
		Name:    "letter",
		Message: "Password must contain at least one letter.",
		Check:   letterRe.MatchString,
	},
	{
		Name:    "digit",
		Message: "Password must contain at least one number.",
		Check:   digitRe.MatchString,
	},
	{
		Name:    "special",
		Message: "Password must contain at least one special character.",
		Check:   specialRe.MatchString,
	},
	{
		Name:    "forbidden",
		Message: "Password cannot contain '_', '/', or ','.",
		Check: func(p string) bool {
			return !strings.ContainsAny(p, Forbidden)
		},
	},
}

// Validate returns every rule of DefaultRules that p violates. An empty
// result means the password is acceptable.
func Validate(p string) []Violation {
	return ValidateWith(p, DefaultRules)
}

// ValidateWith is Validate over a caller supplied rule set.
func ValidateWith(p string, rules []Rule) []Violation {
	var out []Violation
	for _, r := range rules {
		if !r.Check(p) {
			out = append(out, Violation{Rule: r.Name, Message: r.Message})
		}
	}
	return out
}

// RuleError reports the violations of a rejected password.
type RuleError struct {
	Violations []Violation
}

func (e *RuleError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, " ")
}

// Messages returns the human readable message of each violation.
func (e *RuleError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return msgs
}

// Check returns a *RuleError when p violates any default rule, nil otherwise.
func Check(p string) error {
	if v := Validate(p); len(v) > 0 {
		return &RuleError{Violations: v}
	}
	return nil
}
