package event

import "testing"

func TestParseType_RoundTripsNames(t *testing.T) {
	for typ := PointerDown; typ <= NativeWindowCloseRequest; typ++ {
		got, err := ParseType(typ.String())
		if err != nil {
			t.Fatalf("ParseType(%q): unexpected error: %v", typ.String(), err)
		}
		if got != typ {
			t.Fatalf("expected %v, got %v", typ, got)
		}
	}
}

func TestParseType_UnknownName(t *testing.T) {
	if _, err := ParseType("pointer_wiggle"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestType_Classification(t *testing.T) {
	if !PointerMove.IsPointer() || KeyDown.IsPointer() || Click.IsPointer() {
		t.Fatalf("pointer classification wrong")
	}
	if !NativeWindowResized.IsNative() || WindowOpen.IsNative() {
		t.Fatalf("native classification wrong")
	}
}
