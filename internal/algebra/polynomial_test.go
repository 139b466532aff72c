package algebra

import (
	"math/big"
	"testing"
)

func TestAddSubRoundTrip(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")
	p := x.Add(y).ConstMult(big.NewInt(3))
	if !p.Add(y).Sub(y).Equals(p) {
		t.Fatalf("p.add(q).sub(q) should equal p")
	}
}

func TestMultCommutes(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")
	if !x.Mult(y).Equals(y.Mult(x)) {
		t.Fatalf("multiplication should commute")
	}
}

func TestMultExact(t *testing.T) {
	x := NewVar("x")
	got := x.Mult(x).Add(NewConst(1))
	want := NewVar("x").Mult(NewVar("x")).Add(One)
	if !got.Equals(want) {
		t.Fatalf("mult must be exact: got %s want %s", got, want)
	}
}

func TestIsLinear(t *testing.T) {
	x := NewVar("x")
	lin := x.ConstMult(big.NewInt(2)).Add(NewConst(5))
	if !lin.IsLinear() {
		t.Fatalf("2x+5 should be linear")
	}
	quad := x.Mult(x)
	if quad.IsLinear() {
		t.Fatalf("x*x should not be linear")
	}
}

func TestInstantiate(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")
	p := x.Add(NewConst(1))
	sigma := map[string]*Polynomial{"x": y.Add(NewConst(2))}
	got := p.Instantiate(sigma)
	want := y.Add(NewConst(3))
	if !got.Equals(want) {
		t.Fatalf("instantiate: got %s want %s", got, want)
	}
}

func TestNormStepsNeeded(t *testing.T) {
	x := NewVar("x")
	p := x.Add(NewConst(300))
	steps := p.NormStepsNeeded(big.NewInt(0), big.NewInt(255), big.NewInt(256))
	if steps != 1 {
		t.Fatalf("expected 1 normalisation step, got %d", steps)
	}
	quad := x.Mult(x)
	if quad.NormStepsNeeded(big.NewInt(0), big.NewInt(255), big.NewInt(256)) != -1 {
		t.Fatalf("non-linear polynomial should report -1")
	}
}

func TestBitwidthConstants(t *testing.T) {
	if SignedMax(8).String() != "127" {
		t.Fatalf("simax(8) should be 127, got %s", SignedMax(8))
	}
	if UnsignedMax(8).String() != "255" {
		t.Fatalf("uimax(8) should be 255, got %s", UnsignedMax(8))
	}
	if PowerOfTwo(8).String() != "256" {
		t.Fatalf("2^8 should be 256, got %s", PowerOfTwo(8))
	}
}
