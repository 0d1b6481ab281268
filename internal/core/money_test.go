package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in      string
		cents   int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12", 1200, false},
		{"0.01", 1, false},
		{"12.345", 1235, false}, // half-up past two decimals
		{"12.344", 1234, false},
		{"5000", 500000, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		m, err := ParseMoney(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseMoney(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMoney(%q): %v", tc.in, err)
		}
		if m.Cents != tc.cents {
			t.Fatalf("ParseMoney(%q) = %d cents, want %d", tc.in, m.Cents, tc.cents)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "12.34" {
		t.Fatalf("marshal = %s, want 12.34", b)
	}

	var m Money
	if err := json.Unmarshal([]byte("12.34"), &m); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if m.Cents != 1234 {
		t.Fatalf("unmarshal number = %d cents, want 1234", m.Cents)
	}

	// Quoted amounts are accepted too.
	if err := json.Unmarshal([]byte(`"99.90"`), &m); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if m.Cents != 9990 {
		t.Fatalf("unmarshal string = %d cents, want 9990", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"nope"`), &m); err == nil {
		t.Fatalf("expected error for junk amount")
	}
}

func TestMoneyWholeNumberMarshal(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 500000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "5000" {
		t.Fatalf("marshal = %s, want 5000", b)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 500}
	b := Money{Cents: 199}
	if got := a.Add(b).Cents; got != 699 {
		t.Fatalf("Add = %d, want 699", got)
	}
	if got := a.Sub(b).Cents; got != 301 {
		t.Fatalf("Sub = %d, want 301", got)
	}
	if got := b.Sub(a).Cents; got != -301 {
		t.Fatalf("Sub = %d, want -301", got)
	}
}

func TestMoneyString(t *testing.T) {
	if s := (Money{Cents: 1234}).String(); s != "12.34" {
		t.Fatalf("String = %q, want 12.34", s)
	}
	if s := (Money{Cents: -50}).String(); s != "-0.50" {
		t.Fatalf("String = %q, want -0.50", s)
	}
}
