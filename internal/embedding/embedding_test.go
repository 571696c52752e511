package embedding

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"opposite", Vector{1, 2}, Vector{-1, -2}, -1},
		{"mismatched lengths", Vector{1, 2}, Vector{1, 2, 3}, 0},
		{"empty", Vector{}, Vector{}, 0},
		{"zero vector", Vector{0, 0}, Vector{1, 1}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-6 {
				t.Fatalf("Cosine=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestLocalDeterministic(t *testing.T) {
	l := NewLocal(64)
	a, err := l.Embed("the innkeeper pours ale")
	if err != nil {
		t.Fatal(err)
	}
	b, err := l.Embed("the innkeeper pours ale")
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 64 || len(b) != 64 {
		t.Fatalf("dims=%d,%d want=64", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at index %d", i)
		}
	}

	c, _ := l.Embed("a completely different sentence")
	if Cosine(a, c) > 0.9999 {
		t.Fatal("distinct texts produced near-identical vectors")
	}
}

func TestLocalUnitNorm(t *testing.T) {
	l := NewLocal(0) // defaults to 128
	if l.Dims() != 128 {
		t.Fatalf("Dims=%d want=128", l.Dims())
	}
	v, err := l.Embed("hello")
	if err != nil {
		t.Fatal(err)
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-4 {
		t.Fatalf("L2 norm=%v want=1", math.Sqrt(norm))
	}
}
