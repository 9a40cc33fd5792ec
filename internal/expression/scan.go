package expression

// matchingParen returns the index of the ')' that balances the '(' at open,
// respecting single and double quotes, or -1 when unbalanced.
func matchingParen(s string, open int) int {
	depth := 1
	inSingle := false
	inDouble := false

	for i := open + 1; i < len(s); i++ {
		switch s[i] {
		case '\'':
			if !inDouble {
				inSingle = !inSingle
			}
		case '"':
			if !inSingle {
				inDouble = !inDouble
			}
		case '(':
			if !inSingle && !inDouble {
				depth++
			}
		case ')':
			if !inSingle && !inDouble {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// splitArgs splits a function argument list on top-level commas, respecting
// paren depth and single/double quotes. Commas inside quotes or nested calls
// never split.
func splitArgs(text string) []string {
	var args []string
	var current []byte
	depth := 0
	inSingle := false
	inDouble := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
			current = append(current, c)
		case c == '"' && !inSingle:
			inDouble = !inDouble
			current = append(current, c)
		case c == '(' && !inSingle && !inDouble:
			depth++
			current = append(current, c)
		case c == ')' && !inSingle && !inDouble:
			depth--
			current = append(current, c)
		case c == ',' && depth == 0 && !inSingle && !inDouble:
			args = append(args, string(current))
			current = current[:0]
		default:
			current = append(current, c)
		}
	}

	if len(current) > 0 {
		args = append(args, string(current))
	}
	return args
}

// lastArgSeparator returns the index of the last top-level comma in text,
// scanning backwards, or -1 when there is none.
func lastArgSeparator(text string) int {
	depth := 0
	inSingle := false
	inDouble := false

	for i := len(text) - 1; i >= 0; i-- {
		c := text[i]
		if c == '\'' && !inDouble {
			inSingle = !inSingle
		} else if c == '"' && !inSingle {
			inDouble = !inDouble
		}

		if inSingle || inDouble {
			continue
		}
		switch c {
		case ')':
			depth++
		case '(':
			depth--
		case ',':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
