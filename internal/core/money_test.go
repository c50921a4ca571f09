package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"0.01", 1, true},
		{"50.50", 5050, true},
		{"12.340", 1234, true}, // trailing zero is still whole cents
		{" 2.50 ", 250, true},
		{"1.005", 0, false}, // sub-cent
		{"-1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		100000: "1000.00",
		5050:   "50.50",
		1:      "0.01",
		-1250:  "-12.50",
		0:      "0.00",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		Amount Money `json:"amount"`
	}

	for _, body := range []string{`{"amount":"12.34"}`, `{"amount":12.34}`} {
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			t.Fatalf("unmarshal %s: %v", body, err)
		}
		if payload.Amount.Cents != 1234 {
			t.Fatalf("unmarshal %s: got %d cents", body, payload.Amount.Cents)
		}
	}

	for _, body := range []string{`{"amount":0}`, `{"amount":"-3"}`, `{"amount":1.999}`, `{"amount":null}`} {
		if err := json.Unmarshal([]byte(body), &payload); err == nil {
			t.Fatalf("unmarshal %s: expected error", body)
		}
	}

	out, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 5000}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"amount":"50.00"}` {
		t.Fatalf("marshal = %s", out)
	}
}
