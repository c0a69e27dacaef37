package directory

import (
	"testing"
)

func TestSeededRoster(t *testing.T) {
	d, err := NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	doctors := d.List()
	if len(doctors) != 5 {
		t.Fatalf("expected 5 seed doctors, got %d", len(doctors))
	}
	if doctors[4].Specialization != "General Physician" {
		t.Fatalf("expected General Physician in seed set, got %q", doctors[4].Specialization)
	}
}

func TestAddAppendsAndAllowsDuplicates(t *testing.T) {
	d, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rec := DoctorRecord{Name: "Dr. A", Specialization: "Dermatology", AvailableTimings: "9-5", Location: "Clinic", Contact: "a@example.com"}
	if err := d.Add(rec); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := d.Add(rec); err != nil {
		t.Fatalf("Add duplicate: %v", err)
	}
	if got := len(d.List()); got != 2 {
		t.Fatalf("expected 2 records, got %d", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	d, err := NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	doctors := d.List()
	doctors[0].Name = "mutated"
	if d.List()[0].Name == "mutated" {
		t.Fatalf("List must return a copy")
	}
}

func TestSearchFindsBySpecialization(t *testing.T) {
	d, err := NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	matches, err := d.Search("cardiology", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected at least one cardiology match")
	}
	if matches[0].Name != "Dr. Don Blake" {
		t.Fatalf("expected Dr. Don Blake first, got %q", matches[0].Name)
	}
}
