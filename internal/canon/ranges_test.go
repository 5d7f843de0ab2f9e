package canon

import "testing"

func TestLookupBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		id      int
		wantKey string
		wantOK  bool
	}{
		{name: "first digha sutta", id: 17, wantKey: "digha", wantOK: true},
		{name: "last digha sutta", id: 264, wantKey: "digha", wantOK: true},
		{name: "first majjhima sutta", id: 265, wantKey: "majjhima", wantOK: true},
		{name: "last samyutta sutta", id: 1172, wantKey: "samyutta", wantOK: true},
		{name: "first khuddaka sutta", id: 1173, wantKey: "khuddaka", wantOK: true},
		{name: "last anguttara sutta", id: 15702, wantKey: "anguttara", wantOK: true},
		{name: "below all ranges", id: 16, wantOK: false},
		{name: "above all ranges", id: 15703, wantOK: false},
		{name: "zero", id: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Lookup(tt.id)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%d) ok = %v, want %v", tt.id, ok, tt.wantOK)
			}
			if ok && info.Key != tt.wantKey {
				t.Fatalf("Lookup(%d) key = %q, want %q", tt.id, info.Key, tt.wantKey)
			}
		})
	}
}

func TestRangesAreContiguousAndOrdered(t *testing.T) {
	t.Parallel()

	all := Ranges()
	if len(all) == 0 {
		t.Fatal("expected at least one collection")
	}
	for i, r := range all {
		if r.StartID > r.EndID {
			t.Fatalf("collection %q has start %d > end %d", r.Key, r.StartID, r.EndID)
		}
		if i == 0 {
			continue
		}
		prev := all[i-1]
		if r.StartID != prev.EndID+1 {
			t.Fatalf("collection %q start %d does not abut %q end %d", r.Key, r.StartID, prev.Key, prev.EndID)
		}
	}
}

func TestByKey(t *testing.T) {
	t.Parallel()

	info, ok := ByKey("majjhima")
	if !ok {
		t.Fatal("expected majjhima to exist")
	}
	if info.StartID != 265 || info.EndID != 979 {
		t.Fatalf("unexpected majjhima range %d-%d", info.StartID, info.EndID)
	}
	if _, ok := ByKey("abhidhamma"); ok {
		t.Fatal("expected unknown key to be absent")
	}
}

func TestTotals(t *testing.T) {
	t.Parallel()

	if got, want := MinID(), 17; got != want {
		t.Fatalf("MinID() = %d, want %d", got, want)
	}
	if got, want := MaxID(), 15702; got != want {
		t.Fatalf("MaxID() = %d, want %d", got, want)
	}
	sum := 0
	for _, r := range Ranges() {
		sum += r.Size()
	}
	if got := TotalSuttas(); got != sum {
		t.Fatalf("TotalSuttas() = %d, want %d", got, sum)
	}
}

func TestDefaultOrderCoversAllKeys(t *testing.T) {
	t.Parallel()

	order := DefaultOrder()
	if len(order) != len(Keys()) {
		t.Fatalf("default order has %d keys, table has %d", len(order), len(Keys()))
	}
	for _, key := range order {
		if _, ok := ByKey(key); !ok {
			t.Fatalf("default order references unknown key %q", key)
		}
	}
}
