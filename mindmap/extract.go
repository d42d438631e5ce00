package mindmap

// ExtractJSON returns the first balanced {...} region of content: the one
// whose opening '{' comes earliest. Braces inside JSON string literals are
// ignored, so a label containing "{" does not shift the match, and a '{' that
// never closes does not hide a complete object after it. String state is
// tracked from the first '{' on. The bool is false when nothing balances.
//
// The scan is a single pass with a stack of open positions.
func ExtractJSON(content string) (string, bool) {
	var open []int
	bestStart, bestEnd := -1, -1
	inString := false
	escaped := false
	for i := 0; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			// quotes before the first '{' are prose
			if len(open) > 0 {
				inString = true
			}
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				continue
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if len(open) == 0 {
				// start precedes every position popped before it
				return content[start : i+1], true
			}
			if bestStart < 0 || start < bestStart {
				bestStart, bestEnd = start, i
			}
		}
	}
	if bestStart < 0 {
		return "", false
	}
	return content[bestStart : bestEnd+1], true
}
