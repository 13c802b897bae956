package identifier

import "testing"

func TestUUIDUniqueness(t *testing.T) {
	gen := UUID()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := gen()
		if id == "" {
			t.Fatal("generated an empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID after %d generations: %s", i, id)
		}
		seen[id] = true
	}
}

func TestTimestampFormat(t *testing.T) {
	gen := Timestamp(func() int64 { return 1700000000123456789 })
	id := gen()
	if len(id) < len("1700000000123456789-000000") {
		t.Errorf("unexpected ID shape: %s", id)
	}
	if id[:19] != "1700000000123456789" {
		t.Errorf("ID does not start with the clock value: %s", id)
	}
}
