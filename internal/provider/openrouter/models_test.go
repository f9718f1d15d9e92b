package openrouter

import "testing"

func TestFallbackOrderIsKnown(t *testing.T) {
	for _, id := range FallbackOrder {
		if !IsKnownModel(id) {
			t.Errorf("fallback model %q missing from catalog", id)
		}
	}
}

func TestModelByNameRoundTrip(t *testing.T) {
	for _, m := range Models {
		id, ok := ModelByName(m.Name)
		if !ok || id != m.ID {
			t.Errorf("ModelByName(%q) = %q, %v; want %q", m.Name, id, ok, m.ID)
		}
	}
	if _, ok := ModelByName("no such model"); ok {
		t.Error("ModelByName matched an unknown name")
	}
}

func TestVisionOrder(t *testing.T) {
	order := VisionOrder()
	if len(order) == 0 {
		t.Fatal("vision order is empty")
	}
	for _, id := range order {
		if !SupportsVision(id) {
			t.Errorf("%q in vision order but not vision-capable", id)
		}
	}
}

func TestLookupContextWindow(t *testing.T) {
	if got := lookupContextWindow("anthropic/claude-sonnet-4"); got != 200000 {
		t.Errorf("claude window = %d, want 200000", got)
	}
	if got := lookupContextWindow("unknown/model"); got != defaultContextWindow {
		t.Errorf("unknown model window = %d, want default %d", got, defaultContextWindow)
	}
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	if got := DisplayName("custom/model"); got != "custom/model" {
		t.Errorf("DisplayName = %q", got)
	}
}
