package source

import (
	"os"
	"regexp"
	"strings"

	"github.com/tdiff/tdiff/pkg/errors"
)

// Params are the placeholder substitutions applied to a preparation
// script before execution.
type Params struct {
	// Subject replaces every __SUBJECT__ placeholder (e.g. a customer
	// number, or an all-subjects marker).
	Subject string

	// AsOf replaces the literal `DATE YYYY-MM-DD` placeholder with a
	// quoted date literal.
	AsOf string
}

var (
	datePlaceholder    = regexp.MustCompile(`\bDATE\s+YYYY-MM-DD\b`)
	subjectPlaceholder = regexp.MustCompile(`__SUBJECT__`)
)

// LoadScript reads a SQL script, applies placeholder substitution, and
// splits it into individual statements ready for execution.
func LoadScript(path string, params Params) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapSource("prepare", path, err)
	}
	script := Substitute(string(data), params)
	statements := SplitStatements(script)
	if len(statements) == 0 {
		return nil, errors.NewSourceError("prepare", path, errors.New("script is empty or has only comments"))
	}
	return statements, nil
}

// Substitute replaces the supported placeholders in a SQL script.
func Substitute(script string, params Params) string {
	if params.AsOf != "" {
		script = datePlaceholder.ReplaceAllString(script, "DATE '"+params.AsOf+"'")
	}
	if params.Subject != "" {
		script = subjectPlaceholder.ReplaceAllString(script, params.Subject)
	}
	return script
}

// SplitStatements splits a SQL script into statements on semicolons,
// ignoring semicolons inside string literals and stripping comments.
// Empty statements are dropped.
func SplitStatements(script string) []string {
	var statements []string
	var cur strings.Builder

	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			statements = append(statements, s)
		}
		cur.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		switch {
		case c == '\'':
			// string literal; doubled quotes escape
			cur.WriteRune(c)
			for i++; i < len(runes); i++ {
				cur.WriteRune(runes[i])
				if runes[i] == '\'' {
					if i+1 < len(runes) && runes[i+1] == '\'' {
						i++
						cur.WriteRune(runes[i])
						continue
					}
					break
				}
			}
		case c == '-' && i+1 < len(runes) && runes[i+1] == '-':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			cur.WriteRune('\n')
		case c == '/' && i+1 < len(runes) && runes[i+1] == '*':
			i += 2
			for i+1 < len(runes) && !(runes[i] == '*' && runes[i+1] == '/') {
				i++
			}
			i++
		case c == ';':
			flush()
		default:
			cur.WriteRune(c)
		}
	}
	flush()

	return statements
}
