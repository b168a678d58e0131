// Package format implements the bounded positional placeholder engine used
// by shape-assertion error messages.
//
// Templates use zero-indexed placeholders of the form {n}, {n,...} or
// {n:...}. Validation and substitution are independent passes: validation
// only counts and bounds-checks placeholder indices, substitution assumes
// validation already ran.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxArgs bounds the number of positional arguments a template may
// reference. Assertion ops carry at most this many error-message inputs.
const MaxArgs = 4

// Placeholder syntax: "{" index followed by ",", ":" or "}". The layout and
// format suffixes are accepted but ignored by substitution.
var placeholderRE = regexp.MustCompile(`\{([0-9]+)[,:}]`)

// ValidateTemplate checks that every placeholder index in tmpl is below
// nargs. It never substitutes. The returned error names the first offending
// specifier.
func ValidateTemplate(tmpl string, nargs int) error {
	rest := tmpl
	for {
		loc := placeholderRE.FindStringSubmatchIndex(rest)
		if loc == nil {
			return nil
		}
		spec := rest[loc[0]:loc[1]]
		index, err := strconv.Atoi(rest[loc[2]:loc[3]])
		if err != nil {
			// Unreachable: the pattern admits digits only.
			return fmt.Errorf("malformed specifier %q", spec)
		}
		if index < 0 || index >= nargs {
			return fmt.Errorf("expects error_message to contain format specifiers with error_message_input index less than %d. Found specifier %q", nargs, spec)
		}
		rest = rest[:loc[0]] + rest[loc[1]:]
	}
}

// Format substitutes each placeholder with the decimal value of the
// corresponding argument. With zero arguments the template is returned
// verbatim, unmodified. Arguments beyond MaxArgs are ignored; indices are
// assumed in range (ValidateTemplate ran during schema checking).
func Format(tmpl string, args []int64) string {
	if len(args) == 0 {
		return tmpl
	}
	if len(args) > MaxArgs {
		args = args[:MaxArgs]
	}
	var b strings.Builder
	rest := tmpl
	for {
		loc := placeholderRE.FindStringSubmatchIndex(rest)
		if loc == nil {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:loc[0]])
		index, _ := strconv.Atoi(rest[loc[2]:loc[3]])
		if index >= 0 && index < len(args) {
			b.WriteString(strconv.FormatInt(args[index], 10))
		}
		// Skip the whole specifier, including any {n,...} or {n:...} suffix
		// up to the closing brace.
		tail := rest[loc[1]:]
		if rest[loc[1]-1] != '}' {
			if close := strings.IndexByte(tail, '}'); close >= 0 {
				tail = tail[close+1:]
			}
		}
		rest = tail
	}
}
