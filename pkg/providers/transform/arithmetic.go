package transform

import (
	"strconv"
	"strings"

	"github.com/agentweave/agentweave/pkg/protocol"
)

// evalArithmetic evaluates an already-resolved arithmetic expression over
// numbers: + - * / with the usual precedence and parentheses. Variable
// references are gone by the time the expression reaches the adapter, so
// only numeric literals remain.
func evalArithmetic(expression string) (float64, error) {
	p := &exprParser{input: expression}

	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()

	if p.pos != len(p.input) {
		return 0, &protocol.ConfigError{Key: "expression", Reason: "unexpected trailing input at position " + strconv.Itoa(p.pos)}
	}

	return value, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()

		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}

		p.pos++

		right, err := p.parseProduct()
		if err != nil {
			return 0, err
		}

		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()

		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}

		p.pos++

		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}

		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, &protocol.ConfigError{Key: "expression", Reason: "division by zero"}
			}

			left /= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	p.skipSpaces()

	ch, ok := p.peek()
	if !ok {
		return 0, &protocol.ConfigError{Key: "expression", Reason: "unexpected end of expression"}
	}

	if ch == '(' {
		p.pos++

		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}

		p.skipSpaces()

		if ch, ok := p.peek(); !ok || ch != ')' {
			return 0, &protocol.ConfigError{Key: "expression", Reason: "missing closing parenthesis"}
		}

		p.pos++

		return value, nil
	}

	if ch == '-' {
		p.pos++

		value, err := p.parseTerm()
		if err != nil {
			return 0, err
		}

		return -value, nil
	}

	start := p.pos
	for p.pos < len(p.input) && (isDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}

	if p.pos == start {
		return 0, &protocol.ConfigError{Key: "expression", Reason: "expected number at position " + strconv.Itoa(p.pos)}
	}

	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, &protocol.ConfigError{Key: "expression", Reason: "invalid number " + strconv.Quote(p.input[start:p.pos])}
	}

	return value, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func (p *exprParser) peek() (byte, bool) {
	if p.pos >= len(p.input) {
		return 0, false
	}

	return p.input[p.pos], true
}

func (p *exprParser) skipSpaces() {
	p.pos += len(p.input[p.pos:]) - len(strings.TrimLeft(p.input[p.pos:], " \t"))
}
