package expression

import "regexp"

// rule is one (pattern, replacement) rewrite applied case-insensitively.
type rule struct {
	re   *regexp.Regexp
	repl string
}

func fn(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(`(?i)` + pattern), repl: repl}
}

func op(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

// functionRules is the flat single-call rewrite table. Order matters: format
// specific variants precede generic fallbacks, and the table is applied to a
// fixed point because translating an outer call can expose an inner one.
var functionRules = []rule{
	// Date part extraction.
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]DD['"]\s*\)`, `dayOfMonth($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]MM['"]\s*\)`, `month($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]YYYY['"]\s*\)`, `year($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]YY['"]\s*\)`, `year($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]Y['"]\s*\)`, `year($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]DDD['"]\s*\)`, `dayOfYear($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]WW['"]\s*\)`, `weekOfYear($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]HH['"]\s*\)`, `hour($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]MI['"]\s*\)`, `minute($1)`),
	fn(`GET_DATE_PART\s*\(\s*(.+?)\s*,\s*['"]SS['"]\s*\)`, `second($1)`),

	// Date arithmetic. The paren-aware scanner handles nested arguments; these
	// cover the flat cases the scanner leaves untouched.
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]DD['"]\s*,\s*([^)]+?)\s*\)`, `addDays($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]MM['"]\s*,\s*([^)]+?)\s*\)`, `addMonths($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]YYYY['"]\s*,\s*([^)]+?)\s*\)`, `addYears($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]YY['"]\s*,\s*([^)]+?)\s*\)`, `addYears($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]Y['"]\s*,\s*([^)]+?)\s*\)`, `addYears($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]HH['"]\s*,\s*([^)]+?)\s*\)`, `addHours($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]MI['"]\s*,\s*([^)]+?)\s*\)`, `addMinutes($1, $2)`),
	fn(`ADD_TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]SS['"]\s*,\s*([^)]+?)\s*\)`, `addSeconds($1, $2)`),

	fn(`LAST_DAY\s*\(\s*([^)]+?)\s*\)`, `lastDayOfMonth($1)`),

	// TO_CHAR date formats. 'DAY' yields the day name in the source dialect
	// but dayOfWeek() yields a number (1=Sunday), hence the case() mapping.
	fn(`TO_CHAR\s*\(\s*([^,]+?)\s*,\s*['"]DAY['"]\s*\)`,
		`case(dayOfWeek($1), 1, 'Sunday', 2, 'Monday', 3, 'Tuesday', 4, 'Wednesday', 5, 'Thursday', 6, 'Friday', 7, 'Saturday')`),
	fn(`TO_CHAR\s*\(\s*([^,]+?)\s*,\s*['"]MONTH['"]\s*\)`, `toString($1, 'MMMM')`),
	fn(`TO_CHAR\s*\(\s*([^,]+?)\s*,\s*['"]DDD['"]\s*\)`, `dayOfYear($1)`),
	fn(`TO_CHAR\s*\(\s*([^,]+?)\s*,\s*['"]([^'"]+?)['"]\s*\)`, `toString($1, '$2')`),

	// TO_DATE with format normalization.
	fn(`TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]MM/DD/YYYY['"]\s*\)`, `toDate($1, 'MM/dd/yyyy')`),
	fn(`TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]DD/MM/YYYY['"]\s*\)`, `toDate($1, 'dd/MM/yyyy')`),
	fn(`TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]YYYY-MM-DD['"]\s*\)`, `toDate($1, 'yyyy-MM-dd')`),
	fn(`TO_DATE\s*\(\s*([^,]+?)\s*,\s*['"]([^'"]+?)['"]\s*\)`, `toDate($1, '$2')`),
	fn(`TO_DATE\s*\(\s*([^)]+?)\s*\)`, `toDate($1)`),

	fn(`SYSDATE\s*\(\s*\)`, `currentTimestamp()`),
	fn(`SYSDATE`, `currentTimestamp()`),
	fn(`CURRENT_DATE\s*\(\s*\)`, `currentDate()`),
	fn(`CURRENT_TIMESTAMP\s*\(\s*\)`, `currentTimestamp()`),

	// String functions.
	fn(`SUBSTR\s*\(\s*([^,]+?)\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `substring($1, $2, $3)`),
	fn(`SUBSTR\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `substring($1, $2)`),
	fn(`INSTR\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `indexOf($1, $2)`),
	fn(`REPLACE_CHAR\s*\(\s*([^,]+?)\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `replace($1, $2, $3)`),
	fn(`REPLACE\s*\(\s*([^,]+?)\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `replace($1, $2, $3)`),
	fn(`CONCAT\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `concat($1, $2)`),
	fn(`LTRIM\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `ltrim($1, $2)`),
	fn(`LTRIM\s*\(\s*([^)]+?)\s*\)`, `ltrim($1)`),
	fn(`RTRIM\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `rtrim($1, $2)`),
	fn(`RTRIM\s*\(\s*([^)]+?)\s*\)`, `rtrim($1)`),
	fn(`TRIM\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `trim($1, $2)`),
	fn(`TRIM\s*\(\s*([^)]+?)\s*\)`, `trim($1)`),
	fn(`UPPER\s*\(\s*([^)]+?)\s*\)`, `upper($1)`),
	fn(`LOWER\s*\(\s*([^)]+?)\s*\)`, `lower($1)`),
	fn(`LENGTH\s*\(\s*([^)]+?)\s*\)`, `length($1)`),
	fn(`LPAD\s*\(\s*([^,]+?)\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `lpad($1, $2, $3)`),
	fn(`RPAD\s*\(\s*([^,]+?)\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `rpad($1, $2, $3)`),

	// Conversions.
	fn(`TO_INTEGER\s*\(\s*([^)]+?)\s*\)`, `toInteger($1)`),
	fn(`TO_DECIMAL\s*\(\s*([^)]+?)\s*\)`, `toDecimal($1)`),
	fn(`TO_FLOAT\s*\(\s*([^)]+?)\s*\)`, `toFloat($1)`),
	fn(`TO_CHAR\s*\(\s*([^)]+?)\s*\)`, `toString($1)`),

	// Conditionals.
	fn(`IIF\s*\(\s*([^,]+?)\s*,\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `iif($1, $2, $3)`),

	// Aggregates keep their name, lowercased.
	fn(`SUM\s*\(\s*([^)]+?)\s*\)`, `sum($1)`),
	fn(`AVG\s*\(\s*([^)]+?)\s*\)`, `avg($1)`),
	fn(`COUNT\s*\(\s*([^)]+?)\s*\)`, `count($1)`),
	fn(`COUNT\s*\(\s*\*\s*\)`, `count()`),
	fn(`MIN\s*\(\s*([^)]+?)\s*\)`, `min($1)`),
	fn(`MAX\s*\(\s*([^)]+?)\s*\)`, `max($1)`),
	fn(`FIRST\s*\(\s*([^)]+?)\s*\)`, `first($1)`),
	fn(`LAST\s*\(\s*([^)]+?)\s*\)`, `last($1)`),

	// Math.
	fn(`ROUND\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `round($1, $2)`),
	fn(`ROUND\s*\(\s*([^)]+?)\s*\)`, `round($1)`),
	fn(`CEIL\s*\(\s*([^)]+?)\s*\)`, `ceil($1)`),
	fn(`FLOOR\s*\(\s*([^)]+?)\s*\)`, `floor($1)`),
	fn(`ABS\s*\(\s*([^)]+?)\s*\)`, `abs($1)`),
	fn(`POWER\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `power($1, $2)`),
	fn(`SQRT\s*\(\s*([^)]+?)\s*\)`, `sqrt($1)`),

	// Null handling.
	fn(`ISNULL\s*\(\s*([^)]+?)\s*\)`, `isNull($1)`),
	fn(`IS_NULL\s*\(\s*([^)]+?)\s*\)`, `isNull($1)`),
	fn(`NVL\s*\(\s*([^,]+?)\s*,\s*([^)]+?)\s*\)`, `coalesce($1, $2)`),
	fn(`COALESCE\s*\(\s*([^)]+?)\s*\)`, `coalesce($1)`),
}

// operatorRules rewrites logical and comparison operators. Applied
// case-sensitively: the source dialect writes keywords in upper case.
var operatorRules = []rule{
	op(`\bAND\b`, `&&`),
	op(`\bOR\b`, `||`),
	op(`\bNOT\b`, `!`),
	op(`<>`, `!=`),
	op(`===`, `==`),
}

// forbiddenTokens must not survive translation. Matched case-insensitively as
// call prefixes (or padded keywords) so variable names containing them pass.
var forbiddenTokens = []string{
	"GET_DATE_PART(",
	"ADD_TO_DATE(",
	"ADD_TODATE(",
	"LAST_DAY(",
	"TO_CHAR(",
	"TO_DATE(",
	"REPLACE_CHAR(",
	"INSTR(",
	"DECODE(",
	" AND ",
	" OR ",
	" NOT ",
}
