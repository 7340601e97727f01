package dbus

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestValidMemberName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"version", true},
		{"AvailableSourceTypes", true},
		{"session_handle", true},
		{"power-saver-enabled", true},
		{"a1-b2_c3", true},
		{"", false},
		{"1version", false},
		{"-leading", false},
		{"has space", false},
		{"dotted.name", false},
	}

	for _, tt := range tests {
		if got := ValidMemberName(tt.name); got != tt.want {
			t.Errorf("ValidMemberName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestUnbox(t *testing.T) {
	raw := "value"
	once := dbus.MakeVariant(raw)
	twice := dbus.MakeVariant(once)

	tests := []struct {
		name string
		in   interface{}
	}{
		{"unwrapped", raw},
		{"single variant", once},
		{"double variant", twice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unbox(tt.in); got != raw {
				t.Errorf("Unbox() = %v, want %q", got, raw)
			}
		})
	}
}

func TestExtractObjectPath(t *testing.T) {
	path := dbus.ObjectPath("/org/freedesktop/portal/desktop/session/1_42/tok")

	if got, ok := ExtractObjectPath(dbus.MakeVariant(path)); !ok || got != path {
		t.Errorf("ExtractObjectPath(path variant) = %q, %v", got, ok)
	}
	if got, ok := ExtractObjectPath(dbus.MakeVariant(string(path))); !ok || got != path {
		t.Errorf("ExtractObjectPath(string variant) = %q, %v", got, ok)
	}
	if _, ok := ExtractObjectPath(dbus.MakeVariant("")); ok {
		t.Error("ExtractObjectPath(empty string) should not be ok")
	}
	if _, ok := ExtractObjectPath(dbus.MakeVariant(uint32(7))); ok {
		t.Error("ExtractObjectPath(uint32) should not be ok")
	}
}

func TestFilterResponse(t *testing.T) {
	results := map[string]dbus.Variant{"session_handle": dbus.MakeVariant("/s")}

	code, got, err := FilterResponse(&dbus.Signal{Body: []interface{}{uint32(0), results}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
	if MapString(got, "session_handle") != "/s" {
		t.Errorf("results not propagated: %v", got)
	}
}

func TestFilterResponseNoResults(t *testing.T) {
	code, results, err := FilterResponse(&dbus.Signal{Body: []interface{}{uint32(1)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	if results == nil {
		t.Error("results should be an empty map, not nil")
	}
}

func TestFilterResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		sig  *dbus.Signal
	}{
		{"nil signal", nil},
		{"empty body", &dbus.Signal{Body: []interface{}{}}},
		{"wrong code type", &dbus.Signal{Body: []interface{}{"zero"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := FilterResponse(tt.sig); err == nil {
				t.Error("expected a SignalError")
			}
		})
	}
}
