package domain

// Tokenize splits a log line on spaces, except spaces inside a quoted or
// bracketed span. Any of '"', '[' and ']' flips the "inside" flag, so an
// unbalanced marker swallows the rest of the line into the last token.
func Tokenize(line string) []string {
	var (
		tokens []string
		start  int
		inside bool
	)

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"', '[', ']':
			inside = !inside
		case ' ':
			if inside {
				continue
			}
			if i > start {
				tokens = append(tokens, line[start:i])
			}
			start = i + 1
		}
	}

	if start < len(line) {
		tokens = append(tokens, line[start:])
	}
	return tokens
}
