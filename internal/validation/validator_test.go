// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()
	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same instance")
	}
}

type box struct {
	North float64 `json:"north" validate:"latitude,gtfield=South"`
	South float64 `json:"south" validate:"latitude"`
	East  float64 `json:"east" validate:"longitude,gtfield=West"`
	West  float64 `json:"west" validate:"longitude"`
}

type alert struct {
	Title    string `json:"title" validate:"required,min=5,max=200"`
	Severity string `json:"severity" validate:"oneof=LOW MEDIUM HIGH CRITICAL"`
	ReportID int    `json:"report_id" validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{"valid box", &box{North: 10, South: 0, East: 10, West: 0}, "", ""},
		{"north not above south", &box{North: 0, South: 0, East: 10, West: 0}, "north", "north must be greater than south"},
		{"east not right of west", &box{North: 10, South: 0, East: -1, West: 0}, "east", "east must be greater than west"},
		{"latitude out of range", &box{North: 91, South: 0, East: 10, West: 0}, "north", "north must be a valid latitude (-90 to 90)"},
		{"longitude out of range", &box{North: 10, South: 0, East: 10, West: -181}, "west", "west must be a valid longitude (-180 to 180)"},
		{"valid alert", &alert{Title: "River rising", Severity: "HIGH", ReportID: 1}, "", ""},
		{"short title", &alert{Title: "Hi", Severity: "HIGH", ReportID: 1}, "title", "title must be at least 5 characters"},
		{"bad severity", &alert{Title: "River rising", Severity: "SEVERE", ReportID: 1}, "severity", "severity must be one of: LOW MEDIUM HIGH CRITICAL"},
		{"missing report id", &alert{Title: "River rising", Severity: "LOW"}, "report_id", "report_id must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("expected 1 error, got %d: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, errs[0].Field())
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, errs[0].Error())
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	single := ValidateStruct(&alert{Title: "River rising", Severity: "HIGH"})
	apiErr := single.ToAPIError()
	if apiErr.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, apiErr.Code)
	}
	if apiErr.Details["field"] != "report_id" {
		t.Errorf("expected field detail report_id, got %v", apiErr.Details["field"])
	}

	multi := ValidateStruct(&alert{Title: "x", Severity: "nope"})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("expected 3 field details, got %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "title: ") || !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("unexpected combined message %q", apiErr.Message)
	}
}

func TestEmptyRequestValidationError(t *testing.T) {
	var ve RequestValidationError
	if ve.Error() != "validation failed" {
		t.Errorf("unexpected message %q", ve.Error())
	}
	if ve.ToAPIError().Message != "Validation failed" {
		t.Errorf("unexpected API message %q", ve.ToAPIError().Message)
	}
}
