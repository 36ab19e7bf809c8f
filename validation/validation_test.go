// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validation

import (
	"strings"
	"testing"

	"github.com/track360/server/models"
)

func TestStruct_Location(t *testing.T) {
	tests := []struct {
		name    string
		loc     models.Location
		wantErr string
	}{
		{"valid", models.Location{Latitude: 12.97, Longitude: 77.59}, ""},
		{"bounds", models.Location{Latitude: -90, Longitude: 180}, ""},
		{"latitude too high", models.Location{Latitude: 90.1}, "latitude must be at most 90"},
		{"longitude too low", models.Location{Longitude: -180.5}, "longitude must be at least -180"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.loc)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStruct_Required(t *testing.T) {
	type req struct {
		Name string `validate:"required"`
		Kind string `validate:"oneof=a b"`
	}

	err := Struct(req{Kind: "c"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("missing required message: %v", err)
	}
	if !strings.Contains(err.Error(), "kind must be one of [a b]") {
		t.Errorf("missing oneof message: %v", err)
	}
}

func TestValidator_Singleton(t *testing.T) {
	if Validator() != Validator() {
		t.Error("expected the same validator instance")
	}
}
