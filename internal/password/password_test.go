package password

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"pgregory.net/rapid"
)

type scriptedSource struct {
	values []int
	calls  []int
}

func (s *scriptedSource) IntN(n int) int {
	s.calls = append(s.calls, n)
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func TestGeneratorFollowsDrawnClasses(t *testing.T) {
	t.Parallel()

	// upper D, lower z, 7, 5, upper A, 9
	src := &scriptedSource{values: []int{1, 3, 4, 25, 7, 5, 2, 0, 9}}
	got := NewGenerator(src).Generate()

	if got != "Dz75A9" {
		t.Fatalf("Generate() = %q, want %q", got, "Dz75A9")
	}
	wantCalls := []int{10, 26, 10, 26, 10, 10, 10, 26, 10}
	if len(src.calls) != len(wantCalls) {
		t.Fatalf("IntN calls = %v, want %v", src.calls, wantCalls)
	}
	for i := range wantCalls {
		if src.calls[i] != wantCalls[i] {
			t.Fatalf("IntN calls = %v, want %v", src.calls, wantCalls)
		}
	}
}

func TestGeneratorNeverEmitsLowDigits(t *testing.T) {
	t.Parallel()

	src := &scriptedSource{values: []int{5, 6, 7, 8, 9, 5}}
	if got := NewGenerator(src).Generate(); got != "567895" {
		t.Fatalf("Generate() = %q, want %q", got, "567895")
	}
}

type rapidSource struct {
	t     *rapid.T
	draws []int
}

func (s *rapidSource) IntN(n int) int {
	v := rapid.IntRange(0, n-1).Draw(s.t, "v")
	s.draws = append(s.draws, v)
	return v
}

func TestGeneratorAlphabetProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		src := &rapidSource{t: t}
		got := NewGenerator(src).Generate()

		if len(got) != Length {
			t.Fatalf("len(%q) = %d, want %d", got, len(got), Length)
		}

		draw := 0
		for i, c := range got {
			d := src.draws[draw]
			draw++
			switch {
			case d < 3:
				if c < 'A' || c > 'Z' {
					t.Fatalf("position %d: d=%d produced %q, want uppercase", i, d, c)
				}
				draw++
			case d < 5:
				if c < 'a' || c > 'z' {
					t.Fatalf("position %d: d=%d produced %q, want lowercase", i, d, c)
				}
				draw++
			default:
				if c != rune('0'+d) {
					t.Fatalf("position %d: d=%d produced %q, want digit %d", i, d, c, d)
				}
			}
		}
	})
}

func TestGeneratorDefaultSourceIsConcurrentSafe(t *testing.T) {
	t.Parallel()

	g := NewGenerator(nil)
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz56789"

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := g.Generate()
			if len(p) != Length || strings.Trim(p, alphabet) != "" {
				errs <- p
			}
		}()
	}
	wg.Wait()
	close(errs)

	for p := range errs {
		t.Fatalf("Generate() = %q outside alphabet", p)
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	h, err := NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewBcryptHasher() error = %v", err)
	}

	hash, err := h.Hash("Dz75A9")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "Dz75A9" {
		t.Fatal("Hash() returned the plain password")
	}
	if err := h.Verify(hash, "Dz75A9"); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if err := h.Verify(hash, "dz75a9"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("Verify() with wrong password error = %v, want %v", err, ErrMismatch)
	}
}

func TestNewBcryptHasherCost(t *testing.T) {
	t.Parallel()

	if _, err := NewBcryptHasher(0); err != nil {
		t.Fatalf("NewBcryptHasher(0) error = %v", err)
	}
	if _, err := NewBcryptHasher(bcrypt.MaxCost + 1); err == nil {
		t.Fatal("NewBcryptHasher(MaxCost+1) error = nil, want error")
	}
}
