package geo

import (
	"testing"
)

func TestParseLatLon(t *testing.T) {
	p, err := ParseLatLon("13.0101, 80.2129")
	if err != nil {
		t.Fatalf("ParseLatLon failed: %v", err)
	}
	if p.Lat != 13.0101 || p.Lon != 80.2129 {
		t.Errorf("expected (13.0101, 80.2129), got (%v, %v)", p.Lat, p.Lon)
	}

	// No space after the comma is fine too
	p, err = ParseLatLon("12.9249,80.1275")
	if err != nil {
		t.Fatalf("ParseLatLon failed: %v", err)
	}
	if p.Lat != 12.9249 {
		t.Errorf("expected lat 12.9249, got %v", p.Lat)
	}
}

func TestParseLatLon_Rejects(t *testing.T) {
	cases := []string{
		"",
		"13.01",
		"13.01, 80.21, 5",
		"abc, 80.21",
		"13.01, def",
		"95.0, 80.21",   // latitude out of range
		"13.01, 190.0",  // longitude out of range
		"-91.0, -181.0", // both out of range
	}

	for _, in := range cases {
		if _, err := ParseLatLon(in); err == nil {
			t.Errorf("expected error for %q, got nil", in)
		}
	}
}

func TestPointValid(t *testing.T) {
	if !(Point{Lat: 13.0827, Lon: 80.2707}).Valid() {
		t.Error("expected Chennai center to be valid")
	}
	if (Point{Lat: -90.5, Lon: 0}).Valid() {
		t.Error("expected latitude below -90 to be invalid")
	}
	if (Point{Lat: 0, Lon: 180.5}).Valid() {
		t.Error("expected longitude above 180 to be invalid")
	}
}
