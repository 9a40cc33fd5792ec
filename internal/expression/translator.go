// Package expression rewrites PowerCenter expression syntax into the Data
// Flow expression dialect. Translation is purely syntactic: expressions are
// never evaluated, and anything that cannot be mapped surfaces as an
// UntranslatedConstructError instead of leaking source-dialect tokens into
// the output.
package expression

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxFlatPasses   = 10
	maxNestedPasses = 20
)

// UntranslatedConstructError reports a source-dialect token that survived
// every rewrite pass. Emitting it would produce a script the target cannot
// execute, so the caller must drop the affected field.
type UntranslatedConstructError struct {
	Token      string
	Original   string
	Translated string
}

func (e *UntranslatedConstructError) Error() string {
	return fmt.Sprintf("translated expression still contains %q (original: %q, translated: %q)",
		e.Token, e.Original, e.Translated)
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	portPrefixRe = regexp.MustCompile(`\b(IN|OUT)_`)
	decodeRe     = regexp.MustCompile(`(?i)DECODE\s*\(`)
	addToDateRe  = regexp.MustCompile(`(?i)(ADD_TO_DATE|ADD_TODATE)\s*\(`)
	datePartRe   = regexp.MustCompile(`(?i)GET_DATE_PART\s*\(`)
	unitLitRe    = regexp.MustCompile(`^['"]([A-Za-z]+)['"]$`)

	// Concatenation operands: quoted literal, dotted identifier, or a simple
	// call. Applied only where || cannot be a logical OR.
	concatRe = regexp.MustCompile(`(['"].*?['"]|[\w.]+(?:\([^)]*\))?)\s*\|\|\s*(['"].*?['"]|[\w.]+(?:\([^)]*\))?)`)

	// Bare = used as a comparator: excluded from ==, !=, <=, >= contexts and
	// anchored to a following combinator, comma, close paren, or end of
	// string so column assignments are left alone.
	comparisonRe = regexp.MustCompile(`([^\s=!<>]+)\s*=\s*([^\s=][^=]*?)(\s*(?:&&|\|\||,|\)|$))`)
)

var addToDateUnits = map[string]string{
	"DD":   "addDays",
	"MM":   "addMonths",
	"YYYY": "addYears",
	"YY":   "addYears",
	"Y":    "addYears",
	"HH":   "addHours",
	"MI":   "addMinutes",
	"SS":   "addSeconds",
}

var datePartUnits = map[string]string{
	"DD":   "dayOfMonth",
	"MM":   "month",
	"YYYY": "year",
	"YY":   "year",
	"Y":    "year",
	"DDD":  "dayOfYear",
	"WW":   "weekOfYear",
	"HH":   "hour",
	"MI":   "minute",
	"SS":   "second",
}

// Translate rewrites one PowerCenter expression into Data Flow syntax.
// Malformed input never panics; the best-effort result is returned. The only
// error is *UntranslatedConstructError, raised when a forbidden source token
// survives all passes.
func Translate(expr string) (string, error) {
	if strings.TrimSpace(expr) == "" {
		return expr, nil
	}

	// Expressions arrive from multi-line markup; collapse runs of whitespace
	// so the patterns below see a single line.
	translated := strings.TrimSpace(whitespaceRe.ReplaceAllString(expr, " "))

	// Port prefixes have no target equivalent, only column names do.
	translated = portPrefixRe.ReplaceAllString(translated, "")

	// Nested constructs first: their argument lists may contain commas,
	// parens and quotes that flat patterns would tear apart.
	translated = translateDecode(translated)
	translated = translateAddToDate(translated)
	translated = translateGetDatePart(translated)

	for i := 0; i < maxFlatPasses; i++ {
		previous := translated
		for _, r := range functionRules {
			translated = r.re.ReplaceAllString(translated, r.repl)
		}
		if translated == previous {
			break
		}
	}

	// || is concatenation here only if DECODE did not already process the
	// expression argument by argument; otherwise remaining || are logical OR.
	if strings.Contains(translated, "||") && !strings.Contains(strings.ToUpper(expr), "DECODE") {
		translated = rewriteConcatenation(translated)
	}

	translated = applyOperators(translated)
	translated = convertComparisons(translated)

	if err := validate(translated, expr); err != nil {
		return translated, err
	}
	return translated, nil
}

// translateDecode rewrites DECODE(expr, v1, r1, ..., default) to case(...).
// DECODE(TRUE, cond1, r1, ...) drops the leading TRUE: case() evaluates its
// odd arguments as conditions directly. Each argument is rewritten in
// isolation so operators in one branch never match across a sibling branch.
func translateDecode(expr string) string {
	for i := 0; i < maxNestedPasses; i++ {
		loc := decodeRe.FindStringIndex(expr)
		if loc == nil {
			break
		}
		open := loc[1] - 1
		end := matchingParen(expr, open)
		if end == -1 {
			break
		}

		args := splitArgs(expr[open+1 : end])
		if len(args) < 3 {
			break
		}

		for j, arg := range args {
			arg = rewriteConcatenation(arg)
			arg = applyOperators(arg)
			arg = convertComparisons(arg)
			args[j] = strings.TrimSpace(arg)
		}

		if strings.EqualFold(args[0], "TRUE") {
			args = args[1:]
		}

		expr = expr[:loc[0]] + "case(" + strings.Join(args, ", ") + ")" + expr[end+1:]
	}
	return expr
}

// translateAddToDate rewrites ADD_TO_DATE(date, 'UNIT', n) with arbitrarily
// nested date arguments.
func translateAddToDate(expr string) string {
	for i := 0; i < maxNestedPasses; i++ {
		loc := addToDateRe.FindStringIndex(expr)
		if loc == nil {
			break
		}
		open := loc[1] - 1
		end := matchingParen(expr, open)
		if end == -1 {
			break
		}

		args := splitArgs(expr[open+1 : end])
		if len(args) != 3 {
			break
		}

		unit := unitLitRe.FindStringSubmatch(strings.TrimSpace(args[1]))
		if unit == nil {
			break
		}
		adfFunc, ok := addToDateUnits[strings.ToUpper(unit[1])]
		if !ok {
			break
		}

		replacement := fmt.Sprintf("%s(%s, %s)", adfFunc,
			strings.TrimSpace(args[0]), strings.TrimSpace(args[2]))
		expr = expr[:loc[0]] + replacement + expr[end+1:]
	}
	return expr
}

// translateGetDatePart rewrites GET_DATE_PART(arg, 'UNIT') where arg may
// contain parens. The unit is found by scanning backwards for the last
// top-level comma, so commas inside the date argument are safe.
func translateGetDatePart(expr string) string {
	for i := 0; i < maxNestedPasses; i++ {
		loc := datePartRe.FindStringIndex(expr)
		if loc == nil {
			break
		}
		open := loc[1] - 1
		end := matchingParen(expr, open)
		if end == -1 {
			break
		}

		content := expr[open+1 : end]
		comma := lastArgSeparator(content)
		if comma == -1 {
			break
		}

		dateArg := strings.TrimSpace(content[:comma])
		unit := unitLitRe.FindStringSubmatch(strings.TrimSpace(content[comma+1:]))
		if unit == nil {
			break
		}
		adfFunc, ok := datePartUnits[strings.ToUpper(unit[1])]
		if !ok {
			break
		}

		expr = expr[:loc[0]] + adfFunc + "(" + dateArg + ")" + expr[end+1:]
	}
	return expr
}

// rewriteConcatenation converts the source's || concatenation into nested
// concat() calls, left to right.
func rewriteConcatenation(expr string) string {
	for i := 0; i < maxNestedPasses && strings.Contains(expr, "||"); i++ {
		if !concatRe.MatchString(expr) {
			break
		}
		expr = concatRe.ReplaceAllString(expr, `concat($1, $2)`)
	}
	return expr
}

func applyOperators(expr string) string {
	for _, r := range operatorRules {
		expr = r.re.ReplaceAllString(expr, r.repl)
	}
	return expr
}

// convertComparisons rewrites a bare = comparator to ==.
func convertComparisons(expr string) string {
	return comparisonRe.ReplaceAllString(expr, `${1} == ${2}${3}`)
}

func validate(translated, original string) error {
	upper := strings.ToUpper(translated)
	for _, token := range forbiddenTokens {
		if strings.Contains(upper, strings.ToUpper(token)) {
			return &UntranslatedConstructError{
				Token:      strings.TrimSpace(token),
				Original:   original,
				Translated: translated,
			}
		}
	}
	return nil
}

// Validate checks an already-translated expression for forbidden tokens and
// unbalanced parens or quotes. Used by the script generator before emission.
func Validate(expr string) []string {
	var errs []string

	upper := strings.ToUpper(expr)
	for _, token := range forbiddenTokens {
		if strings.Contains(upper, strings.ToUpper(token)) {
			errs = append(errs, fmt.Sprintf("contains untranslated token %q", strings.TrimSpace(token)))
		}
	}

	if strings.Count(expr, "(") != strings.Count(expr, ")") {
		errs = append(errs, "unbalanced parentheses")
	}
	if strings.Count(expr, "'")%2 != 0 {
		errs = append(errs, "unbalanced single quotes")
	}
	if strings.Count(expr, `"`)%2 != 0 {
		errs = append(errs, "unbalanced double quotes")
	}

	return errs
}
