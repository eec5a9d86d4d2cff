package moneyforward

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// fragmentPattern matches `$("<target>").<method>(<string literal>)` where the
// literal is either single or double quoted.
func fragmentPattern(target string) *regexp.Regexp {
	return regexp.MustCompile(
		`\$\(\s*['"]` + regexp.QuoteMeta(target) + `['"]\s*\)\s*\.\s*\w+\(\s*` +
			`('(?:[^'\\]|\\[\s\S])*'|"(?:[^"\\]|\\[\s\S])*")\s*\)`,
	)
}

var fragmentPatterns = map[string]*regexp.Regexp{
	fragmentTransactions: fragmentPattern(fragmentTransactions),
	fragmentPartner:      fragmentPattern(fragmentPartner),
	fragmentSubAccount:   fragmentPattern(fragmentSubAccount),
}

// extractFragment finds the html handed to the jquery call on `target` inside a
// script response and returns it decoded. ErrDataDoesNotExist is returned when
// there is no such call.
func extractFragment(script, target string) (string, error) {
	pattern, ok := fragmentPatterns[target]
	if !ok {
		pattern = fragmentPattern(target)
	}
	groups := pattern.FindStringSubmatch(script)
	if len(groups) < 2 {
		return "", fmt.Errorf("%w: no fragment for %s", ErrDataDoesNotExist, target)
	}
	return decodeJsString(groups[1])
}

// decodeJsString decodes a quoted javascript string literal. Unknown escapes
// decode to the escaped character itself, like they do in javascript.
func decodeJsString(literal string) (string, error) {
	if len(literal) < 2 || literal[0] != literal[len(literal)-1] ||
		(literal[0] != '"' && literal[0] != '\'') {
		return "", fmt.Errorf("not a quoted string literal: %.20q", literal)
	}
	body := literal[1 : len(literal)-1]

	var out strings.Builder
	out.Grow(len(body))

	for i := 0; i < len(body); {
		c := body[i]
		if c != '\\' {
			r, size := utf8.DecodeRuneInString(body[i:])
			out.WriteRune(r)
			i += size
			continue
		}

		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape at end of literal")
		}
		c = body[i]
		i++
		switch c {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case 'b':
			out.WriteByte('\b')
		case 'f':
			out.WriteByte('\f')
		case 'v':
			out.WriteByte('\v')
		case '0':
			out.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i < len(body) && body[i] == '\n' {
				i++
			}
		case 'x':
			if i+2 > len(body) {
				return "", fmt.Errorf("truncated \\x escape")
			}
			value, err := strconv.ParseUint(body[i:i+2], 16, 8)
			if err != nil {
				return "", fmt.Errorf("invalid \\x escape: %w", err)
			}
			out.WriteRune(rune(value))
			i += 2
		case 'u':
			r, size, err := decodeUnicodeEscape(body[i:])
			if err != nil {
				return "", err
			}
			i += size
			if utf16.IsSurrogate(r) && strings.HasPrefix(body[i:], `\u`) {
				low, lowSize, err := decodeUnicodeEscape(body[i+2:])
				if err == nil {
					if pair := utf16.DecodeRune(r, low); pair != utf8.RuneError {
						r = pair
						i += 2 + lowSize
					}
				}
			}
			out.WriteRune(r)
		default:
			r, size := utf8.DecodeRuneInString(body[i-1:])
			out.WriteRune(r)
			i += size - 1
		}
	}

	return out.String(), nil
}

// decodeUnicodeEscape decodes what follows `\u`, either 4 hex digits or {hex}.
func decodeUnicodeEscape(s string) (rune, int, error) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 0 {
			return 0, 0, fmt.Errorf("unterminated \\u{ escape")
		}
		value, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid \\u{ escape: %w", err)
		}
		return rune(value), end + 1, nil
	}
	if len(s) < 4 {
		return 0, 0, fmt.Errorf("truncated \\u escape")
	}
	value, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid \\u escape: %w", err)
	}
	return rune(value), 4, nil
}
