package password

import (
	"math/rand/v2"
	"sync"
)

// Length is the number of characters in a generated password.
const Length = 6

// Source supplies uniform integers in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Generator produces initial passwords for self-registered users. Each
// position draws d in [0, 10): d < 3 yields an uppercase letter, d < 5 a
// lowercase letter, and any other d is emitted as the digit itself.
type Generator struct {
	mu  sync.Mutex
	src Source
}

// NewGenerator returns a generator over src. A nil src uses the runtime's
// randomly seeded generator.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = globalSource{}
	}
	return &Generator{src: src}
}

func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, Length)
	for i := range buf {
		d := g.src.IntN(10)
		switch {
		case d < 3:
			buf[i] = byte('A' + g.src.IntN(26))
		case d < 5:
			buf[i] = byte('a' + g.src.IntN(26))
		default:
			buf[i] = byte('0' + d)
		}
	}
	return string(buf)
}
