// Package app holds the demo services wired by the container: a calculator
// capability, a consumer service and the provider binding them.
package app

import (
	"log/slog"
	"math/rand/v2"
)

// Calculator is the capability the Service depends on.
type Calculator interface {
	Calculate() int
}

// RandomSource draws a uniform integer in [0, n).
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns the process-wide math/rand/v2 source. It is safe for
// concurrent use.
func DefaultSource() RandomSource { return globalSource{} }

// RandomCalculator multiplies two independent draws in [1, factorMax].
type RandomCalculator struct {
	source    RandomSource
	factorMax int
}

func NewRandomCalculator(source RandomSource, factorMax int) *RandomCalculator {
	return &RandomCalculator{source: source, factorMax: factorMax}
}

// Calculate returns a fresh product on every call.
func (c *RandomCalculator) Calculate() int {
	return c.draw() * c.draw()
}

func (c *RandomCalculator) draw() int {
	return c.source.IntN(c.factorMax) + 1
}

// LoggedCalculator logs every result of Inner at debug level.
type LoggedCalculator struct {
	Inner  Calculator
	Logger *slog.Logger
}

func (c *LoggedCalculator) Calculate() int {
	result := c.Inner.Calculate()
	c.Logger.Debug("calculated", "result", result)
	return result
}
