// Package idgen generates record identifiers and group codes.
package idgen

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/wattcount/internal/models"
)

// CodeAlphabet is the set group codes are drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Source yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator produces identifiers. The zero value is not usable; call New.
type Generator struct {
	src Source
}

// New returns a Generator drawing group codes from the global random source.
func New() *Generator {
	return &Generator{src: globalSource{}}
}

// NewWithSource returns a Generator drawing group codes from src.
func NewWithSource(src Source) *Generator {
	return &Generator{src: src}
}

// NewID returns a UUIDv7: a millisecond timestamp followed by random bits,
// so identifiers sort by creation time. Uniqueness is not checked.
func (g *Generator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewGroupCode returns models.CodeLength characters drawn uniformly from
// CodeAlphabet.
func (g *Generator) NewGroupCode() string {
	var b strings.Builder
	b.Grow(models.CodeLength)
	for i := 0; i < models.CodeLength; i++ {
		b.WriteByte(CodeAlphabet[g.src.IntN(len(CodeAlphabet))])
	}
	return b.String()
}
