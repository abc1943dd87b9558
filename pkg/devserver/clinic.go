package devserver

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DemoClinicID is the id of the built-in clinic served when no profiles
// file is given.
const DemoClinicID = "smile-city-001"

// Clinic is the profile the assistant answers from.
type Clinic struct {
	ID                    string            `yaml:"id"`
	Name                  string            `yaml:"clinic_name"`
	Location              string            `yaml:"location,omitempty"`
	OpeningHours          string            `yaml:"opening_hours,omitempty"`
	Services              []string          `yaml:"services,omitempty"`
	Insurance             []string          `yaml:"insurance,omitempty"`
	PriceRanges           map[string]string `yaml:"price_ranges,omitempty"`
	Languages             []string          `yaml:"languages,omitempty"`
	BookingURL            string            `yaml:"booking_url,omitempty"`
	EmergencyInstructions string            `yaml:"emergency_instructions,omitempty"`
	ContactPhone          string            `yaml:"contact_phone,omitempty"`
	ContactEmail          string            `yaml:"contact_email,omitempty"`
}

// ClinicsFile is the on-disk layout of a profiles file.
type ClinicsFile struct {
	Clinics []Clinic `yaml:"clinics"`
}

// Directory looks clinics up by public id.
type Directory struct {
	byID map[string]Clinic
}

// NewDirectory indexes clinics by id.
func NewDirectory(clinics ...Clinic) (*Directory, error) {
	d := &Directory{byID: make(map[string]Clinic, len(clinics))}
	for i, c := range clinics {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			return nil, fmt.Errorf("clinic %d has no id", i)
		}
		if _, dup := d.byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate clinic id %q", c.ID)
		}
		d.byID[c.ID] = c
	}
	return d, nil
}

// LoadDirectory reads a YAML profiles file.
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clinics file: %w", err)
	}
	var file ClinicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse clinics file %s: %w", path, err)
	}
	if len(file.Clinics) == 0 {
		return nil, fmt.Errorf("clinics file %s defines no clinics", path)
	}
	return NewDirectory(file.Clinics...)
}

// DemoDirectory returns a directory holding only DemoClinic.
func DemoDirectory() *Directory {
	d, _ := NewDirectory(DemoClinic())
	return d
}

// Get returns the clinic with the given id.
func (d *Directory) Get(id string) (Clinic, bool) {
	c, ok := d.byID[id]
	return c, ok
}

// IDs returns all clinic ids in sorted order.
func (d *Directory) IDs() []string {
	ids := make([]string, 0, len(d.byID))
	for id := range d.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DemoClinic is a fictional clinic for local development.
func DemoClinic() Clinic {
	return Clinic{
		ID:           DemoClinicID,
		Name:         "Smile City Dental",
		Location:     "12 Harbour Street",
		OpeningHours: "Mon-Fri 08:00-17:00",
		Services:     []string{"Check-ups", "Cleaning", "Fillings", "Whitening"},
		Insurance:    []string{"Folksam", "Trygg-Hansa"},
		PriceRanges:  map[string]string{"check-up": "600-900 SEK", "cleaning": "800-1200 SEK"},
		Languages:    []string{"English", "Swedish"},
		BookingURL:   "https://smilecity.example/book",
		ContactPhone: "+46 8 123 456",
		ContactEmail: "hello@smilecity.example",

		EmergencyInstructions: "Call the clinic immediately on +46 8 123 456. Outside opening hours call 112.",
	}
}
