package model

import "testing"

func TestNewPayloadMass(t *testing.T) {
	cases := []struct {
		material string
		volume   float64
		mass     float64
	}{
		{"water", 1.0, 1000.0},
		{"ice", 0.3, 275.1},
		{"steel", 0.5, 3925.0},
		{"lead", 0.123, 1394.82},
	}
	for _, tc := range cases {
		p, err := NewPayload(tc.material, tc.volume)
		if err != nil {
			t.Fatalf("NewPayload(%q, %g): %v", tc.material, tc.volume, err)
		}
		if p.MassKg != tc.mass {
			t.Errorf("NewPayload(%q, %g).MassKg = %g, want %g", tc.material, tc.volume, p.MassKg, tc.mass)
		}
	}
}

func TestNewPayloadRejectsBadInput(t *testing.T) {
	if _, err := NewPayload("mercury", 1.0); err == nil {
		t.Error("unknown material accepted")
	}
	for _, v := range []float64{0, -1, 2.0001} {
		if _, err := NewPayload("water", v); err == nil {
			t.Errorf("volume %g accepted", v)
		}
	}
	if _, err := NewPayload("water", PayloadVolumeMax); err != nil {
		t.Errorf("maximum volume rejected: %v", err)
	}
}

func TestMaterialsStableOrder(t *testing.T) {
	names := Materials()
	if len(names) != 7 {
		t.Fatalf("expected 7 materials, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("materials not sorted: %v", names)
		}
	}
	for _, m := range names {
		if _, ok := Density(m); !ok {
			t.Fatalf("no density for %q", m)
		}
	}
}
