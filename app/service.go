package app

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrNoPrintableSymbol is returned when no printable code point was drawn
// within maxSymbolAttempts.
var ErrNoPrintableSymbol = errors.New("app: no printable symbol drawn")

const maxSymbolAttempts = 1000

// Symbol is a single printable character drawn once per scope.
type Symbol string

// NewSymbol draws code points uniformly in [lo, hi) until one is printable.
func NewSymbol(source RandomSource, lo, hi int) (Symbol, error) {
	if lo < 0 || hi > unicode.MaxRune+1 || lo >= hi {
		return "", fmt.Errorf("app: invalid symbol range [%d, %d)", lo, hi)
	}
	for range maxSymbolAttempts {
		r := rune(lo + source.IntN(hi-lo))
		if unicode.IsPrint(r) {
			return Symbol(r), nil
		}
	}
	return "", fmt.Errorf("%w in [%d, %d)", ErrNoPrintableSymbol, lo, hi)
}

// Service delegates to a Calculator and carries the scope's Symbol.
type Service struct {
	calculator Calculator
	Symbol     Symbol
}

func NewService(calculator Calculator, symbol Symbol) *Service {
	return &Service{calculator: calculator, Symbol: symbol}
}

// Call returns the calculator's result unchanged.
func (s *Service) Call() int {
	return s.calculator.Calculate()
}
