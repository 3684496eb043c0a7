package memory

import (
	"context"
	"testing"
)

func TestStoreReturnsCopies(t *testing.T) {
	in := [][]string{{"city"}, {"Campinas"}}
	s := New("t", in)
	in[1][0] = "changed"

	got, err := s.ReadRecords(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got[1][0] != "Campinas" {
		t.Fatalf("store shares caller storage: %v", got)
	}
	got[1][0] = "mutated"
	again, _ := s.ReadRecords(context.Background())
	if again[1][0] != "Campinas" {
		t.Fatalf("store returned shared slice: %v", again)
	}
}

func TestReplace(t *testing.T) {
	s := New("t", [][]string{{"city"}, {"A"}})
	s.Replace([][]string{{"city"}, {"B"}, {"C"}})
	got, _ := s.ReadRecords(context.Background())
	if len(got) != 3 || got[1][0] != "B" {
		t.Fatalf("unexpected records after replace: %v", got)
	}
}

func TestNewSample(t *testing.T) {
	s, err := NewSample()
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	got, err := s.ReadRecords(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 21 {
		t.Fatalf("expected header + 20 rows, got %d", len(got))
	}
	if got[0][0] != "city" || got[1][9] != "R$3,300" {
		t.Fatalf("unexpected sample content: %v / %v", got[0], got[1])
	}
	if s.Describe() != "memory:sample" {
		t.Fatalf("unexpected description %q", s.Describe())
	}
}
