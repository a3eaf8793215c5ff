package expr

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokBool
	tokAnd    // && or "and"
	tokOr     // || or "or"
	tokNot    // ! or "not"
	tokEq     // ==
	tokNe     // !=
	tokLt     // <
	tokLe     // <=
	tokGt     // >
	tokGe     // >=
	tokPlus   // +
	tokMinus  // -
	tokStar   // *
	tokSlash  // /
	tokPct    // %
	tokLParen // (
	tokRParen // )
)

type token struct {
	kind  tokenKind
	text  string
	num   float64 // valid when kind == tokNumber
	isInt bool    // number had no fractional part
	pos   int
}

// scan tokenizes a guard expression. It accepts both symbolic and
// keyword forms of the boolean operators (&&/and, ||/or, !/not).
func scan(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)
	i := 0

	for i < len(runes) {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			i++

		case unicode.IsDigit(r):
			start := i
			for i < len(runes) && unicode.IsDigit(runes[i]) {
				i++
			}
			isInt := true
			if i < len(runes) && runes[i] == '.' {
				if i+1 >= len(runes) || !unicode.IsDigit(runes[i+1]) {
					return nil, fmt.Errorf("malformed number at position %d", start)
				}
				isInt = false
				i++
				for i < len(runes) && unicode.IsDigit(runes[i]) {
					i++
				}
			}
			text := string(runes[start:i])
			var num float64
			if _, err := fmt.Sscanf(text, "%g", &num); err != nil {
				return nil, fmt.Errorf("malformed number %q at position %d", text, start)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: num, isInt: isInt, pos: start})

		case r == '\'' || r == '"':
			quote := r
			start := i
			i++
			var b strings.Builder
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '\\' && i+1 < len(runes) {
					b.WriteRune(runes[i+1])
					i += 2
					continue
				}
				if c == quote {
					closed = true
					i++
					break
				}
				b.WriteRune(c)
				i++
			}
			if !closed {
				return nil, fmt.Errorf("unterminated string at position %d", start)
			}
			toks = append(toks, token{kind: tokString, text: b.String(), pos: start})

		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			word := string(runes[start:i])
			switch word {
			case "true", "false":
				toks = append(toks, token{kind: tokBool, text: word, pos: start})
			case "and":
				toks = append(toks, token{kind: tokAnd, text: word, pos: start})
			case "or":
				toks = append(toks, token{kind: tokOr, text: word, pos: start})
			case "not":
				toks = append(toks, token{kind: tokNot, text: word, pos: start})
			default:
				toks = append(toks, token{kind: tokIdent, text: word, pos: start})
			}

		default:
			start := i
			two := ""
			if i+1 < len(runes) {
				two = string(runes[i : i+2])
			}
			switch two {
			case "==":
				toks = append(toks, token{kind: tokEq, text: two, pos: start})
				i += 2
				continue
			case "!=":
				toks = append(toks, token{kind: tokNe, text: two, pos: start})
				i += 2
				continue
			case "<=":
				toks = append(toks, token{kind: tokLe, text: two, pos: start})
				i += 2
				continue
			case ">=":
				toks = append(toks, token{kind: tokGe, text: two, pos: start})
				i += 2
				continue
			case "&&":
				toks = append(toks, token{kind: tokAnd, text: two, pos: start})
				i += 2
				continue
			case "||":
				toks = append(toks, token{kind: tokOr, text: two, pos: start})
				i += 2
				continue
			}
			switch r {
			case '<':
				toks = append(toks, token{kind: tokLt, text: "<", pos: start})
			case '>':
				toks = append(toks, token{kind: tokGt, text: ">", pos: start})
			case '!':
				toks = append(toks, token{kind: tokNot, text: "!", pos: start})
			case '+':
				toks = append(toks, token{kind: tokPlus, text: "+", pos: start})
			case '-':
				toks = append(toks, token{kind: tokMinus, text: "-", pos: start})
			case '*':
				toks = append(toks, token{kind: tokStar, text: "*", pos: start})
			case '/':
				toks = append(toks, token{kind: tokSlash, text: "/", pos: start})
			case '%':
				toks = append(toks, token{kind: tokPct, text: "%", pos: start})
			case '(':
				toks = append(toks, token{kind: tokLParen, text: "(", pos: start})
			case ')':
				toks = append(toks, token{kind: tokRParen, text: ")", pos: start})
			default:
				return nil, fmt.Errorf("unexpected character %q at position %d", string(r), start)
			}
			i++
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(runes)})
	return toks, nil
}
