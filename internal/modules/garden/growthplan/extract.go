package growthplan

import "strings"

// Shape is the top-level JSON form a caller expects from the generator.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

func (s Shape) opener() byte {
	if s == ShapeArray {
		return '['
	}
	return '{'
}

func closerFor(open byte) byte {
	if open == '[' {
		return ']'
	}
	return '}'
}

// Extract locates the structured payload inside noisy text and strips code fences
// from it. Openers are scanned with a string-aware depth counter. Spans of the wrong
// shape are skipped, and the first one is kept as a fallback so the caller can report
// the mismatch. An unbalanced opener of the wrong shape is stray prose and is skipped.
func Extract(text string, want Shape) (string, error) {
	start := indexOpener(text, 0)
	if start < 0 {
		return "", &ParseError{Kind: ErrNoStructureFound}
	}

	var fallback string
	for pos := start; pos >= 0 && pos < len(text); pos = indexOpener(text, pos) {
		end := balancedEnd(text, pos)
		if end < 0 {
			if text[pos] != want.opener() {
				pos++
				continue
			}
			if fallback != "" {
				break
			}
			// Unbalanced (usually truncated) output: take the greedy span so the
			// decoder reports a precise syntax error instead of "nothing found".
			if greedy := greedySpan(text, pos); greedy != "" {
				return stripFences(greedy), nil
			}
			return "", &ParseError{Kind: ErrNoStructureFound}
		}
		span := text[pos : end+1]
		if text[pos] == want.opener() {
			return stripFences(span), nil
		}
		if fallback == "" {
			fallback = span
		}
		pos = end + 1
	}
	if fallback != "" {
		return stripFences(fallback), nil
	}
	return "", &ParseError{Kind: ErrNoStructureFound}
}

func indexOpener(text string, from int) int {
	if from >= len(text) {
		return -1
	}
	i := strings.IndexAny(text[from:], "[{")
	if i < 0 {
		return -1
	}
	return from + i
}

// balancedEnd returns the index of the bracket closing text[start], ignoring
// brackets inside JSON strings, or -1 when the structure never closes.
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				if ch != closerFor(text[start]) {
					return -1
				}
				return i
			}
		}
	}
	return -1
}

func greedySpan(text string, start int) string {
	end := strings.LastIndexByte(text, closerFor(text[start]))
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
