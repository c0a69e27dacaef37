package directory

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve"
)

// DoctorRecord describes one doctor in the directory. All fields are
// required; duplicate names are permitted.
type DoctorRecord struct {
	Name             string `json:"name"`
	Specialization   string `json:"specialization"`
	AvailableTimings string `json:"available_timings"`
	Location         string `json:"location"`
	Contact          string `json:"contact"`
}

// Directory is an in-memory doctor store with a keyword index for lookup.
// Records live for the process lifetime; there is no delete or update.
type Directory struct {
	mu      sync.RWMutex
	records []DoctorRecord
	index   bleve.Index
}

// New creates an empty directory backed by a memory-only index.
func New() (*Directory, error) {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create directory index: %w", err)
	}
	return &Directory{index: index}, nil
}

// NewSeeded creates a directory pre-populated with the default roster.
func NewSeeded() (*Directory, error) {
	d, err := New()
	if err != nil {
		return nil, err
	}
	for _, rec := range SeedDoctors() {
		if err := d.Add(rec); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// SeedDoctors returns the startup roster.
func SeedDoctors() []DoctorRecord {
	return []DoctorRecord{
		{Name: "Dr. Janet Dyne", Specialization: "Endocrinology (Diabetes Care)", AvailableTimings: "10:00 AM - 1:00 PM", Location: "City Health Clinic", Contact: "janet.dyne@healthclinic.com"},
		{Name: "Dr. Don Blake", Specialization: "Cardiology (Heart Specialist)", AvailableTimings: "2:00 PM - 5:00 PM", Location: "Metro Cardiac Center", Contact: "don.blake@metrocardiac.com"},
		{Name: "Dr. Susan D'Souza", Specialization: "Oncology (Cancer Care)", AvailableTimings: "11:00 AM - 2:00 PM", Location: "Hope Cancer Institute", Contact: "susan.dsouza@hopecancer.org"},
		{Name: "Dr. Matt Murdock", Specialization: "Psychiatry (Mental Health)", AvailableTimings: "4:00 PM - 7:00 PM", Location: "Mind Care Center", Contact: "matt.murdock@mindcare.com"},
		{Name: "Dr. Dinah Lance", Specialization: "General Physician", AvailableTimings: "9:00 AM - 12:00 PM", Location: "Downtown Medical Center", Contact: "dinah.lance@downtownmed.com"},
	}
}

// Add appends a record and indexes it for search.
func (d *Directory) Add(rec DoctorRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := fmt.Sprintf("doctor-%d", len(d.records))
	if err := d.index.Index(id, rec); err != nil {
		return fmt.Errorf("failed to index doctor: %w", err)
	}
	d.records = append(d.records, rec)
	return nil
}

// List returns a copy of all records in insertion order.
func (d *Directory) List() []DoctorRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]DoctorRecord, len(d.records))
	copy(out, d.records)
	return out
}

// Search runs a keyword query over the roster and returns up to k matches.
func (d *Directory) Search(q string, k int) ([]DoctorRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if k <= 0 {
		k = 5
	}
	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k, 0, false)
	res, err := d.index.Search(searchReq)
	if err != nil {
		return nil, err
	}
	var out []DoctorRecord
	for _, hit := range res.Hits {
		var idx int
		if _, err := fmt.Sscanf(hit.ID, "doctor-%d", &idx); err != nil {
			continue
		}
		if idx >= 0 && idx < len(d.records) {
			out = append(out, d.records[idx])
		}
	}
	return out, nil
}
