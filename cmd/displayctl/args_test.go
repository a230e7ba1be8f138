package main

import "testing"

func TestParseModeRequest(t *testing.T) {
	tests := []struct {
		name    string
		w, h, r string
		wantErr bool
	}{
		{"plain 1080p60", "1920", "1080", "60", false},
		{"fractional refresh", "1920", "1080", "59.95", false},
		{"zero width", "0", "1080", "60", true},
		{"negative height", "1920", "-1", "60", true},
		{"zero refresh", "1920", "1080", "0", true},
		{"non-numeric width", "wide", "1080", "60", true},
		{"non-numeric refresh", "1920", "1080", "fast", true},
		{"float width", "1920.5", "1080", "60", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseModeRequest(tt.w, tt.h, tt.r, false)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s %s %s", tt.w, tt.h, tt.r)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if req.Width <= 0 || req.Height <= 0 || req.RefreshHz <= 0 {
				t.Fatalf("parsed request has non-positive fields: %+v", req)
			}
		})
	}
}

func TestParseModeRequest_CarriesUnsafe(t *testing.T) {
	req, err := parseModeRequest("1920", "1080", "59.95", true)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !req.Unsafe {
		t.Fatal("expected unsafe flag to carry through")
	}
	if req.RefreshHz != 59.95 {
		t.Fatalf("refresh = %v, want 59.95", req.RefreshHz)
	}
}

func TestParseBoostLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"100", 100, false},
		{"37", 37, false},
		{"-1", 0, true},
		{"101", 0, true},
		{"bright", 0, true},
		{"50.5", 0, true},
	}
	for _, tt := range tests {
		got, err := parseBoostLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseBoostLevel(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseBoostLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseBoostLevel(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
