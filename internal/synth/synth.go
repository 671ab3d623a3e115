// Package synth generates seeded provider batches with injected data
// quality issues for demos and pipeline exercises.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sells-group/provdir/internal/model"
)

// Injection rates for corrupted fields.
const (
	phoneIssueRate      = 0.40
	addressIssueRate    = 0.30
	credentialIssueRate = 0.20
)

// Corruption markers planted in generated batches.
const (
	PlaceholderPhone = "(000) 000-0000"
	OutdatedStreet   = "123 Old Address St"
)

var specialties = []string{
	"Cardiology", "Dermatology", "Endocrinology", "Family Medicine",
	"Gastroenterology", "Internal Medicine", "Neurology", "Obstetrics/Gynecology",
	"Oncology", "Ophthalmology", "Orthopedic Surgery", "Pediatrics",
	"Psychiatry", "Radiology", "Surgery", "Urology",
}

// regions pair each state with its city pool and phone area code.
var regions = []struct {
	state    string
	areaCode string
	cities   []string
}{
	{"CA", "213", []string{"Los Angeles", "San Diego", "Sacramento"}},
	{"NY", "212", []string{"New York", "Buffalo", "Albany"}},
	{"TX", "512", []string{"Houston", "Austin", "Dallas"}},
	{"FL", "305", []string{"Miami", "Orlando", "Tampa"}},
	{"IL", "312", []string{"Chicago", "Springfield", "Peoria"}},
	{"PA", "215", []string{"Philadelphia", "Pittsburgh", "Allentown"}},
	{"OH", "614", []string{"Columbus", "Cleveland", "Cincinnati"}},
	{"GA", "404", []string{"Atlanta", "Savannah", "Athens"}},
	{"NC", "704", []string{"Charlotte", "Raleigh", "Durham"}},
	{"MI", "313", []string{"Detroit", "Grand Rapids", "Lansing"}},
}

var firstNames = []string{
	"James", "Maria", "Robert", "Jennifer", "Michael", "Linda", "David",
	"Aisha", "John", "Patricia", "Wei", "Susan", "Carlos", "Karen",
	"Ahmed", "Nancy", "Thomas", "Priya", "Daniel", "Elena",
}

var lastNames = []string{
	"Smith", "Johnson", "Garcia", "Chen", "Williams", "Brown", "Jones",
	"Miller", "Davis", "Rodriguez", "Martinez", "Wilson", "Anderson",
	"Taylor", "Reed", "Moore", "Jackson", "Patel", "Khan", "Nguyen",
}

var streets = []string{
	"Main St", "Oak Ave", "Maple Dr", "Washington Blvd", "Park Ave",
	"Cedar Ln", "Elm St", "Lake Dr", "Hill Rd", "Congress Ave",
}

var hospitals = []string{
	"St. Mary's Hospital", "General Hospital", "Memorial Medical Center",
	"University Hospital", "Regional Health Center", "Sacred Heart Hospital",
	"Mercy Hospital", "Riverside Medical Center",
}

// Generator produces provider records from a seeded source. The same seed
// and count always yield the same batch.
type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock fixes the reference time used for verification timestamps.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New builds a generator for the given seed.
func New(seed int64, opts ...Option) *Generator {
	g := &Generator{
		rng: rand.New(rand.NewSource(seed)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Records generates n provider records. Roughly 40% carry a placeholder
// phone, 30% an outdated address, and 20% an unverifiable license.
func (g *Generator) Records(n int) []model.ProviderRecord {
	now := g.now().UTC()
	records := make([]model.ProviderRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, g.record(i+1, now))
	}
	return records
}

// record draws fields in a fixed order so batches stay reproducible.
func (g *Generator) record(seq int, now time.Time) model.ProviderRecord {
	hasPhoneIssue := g.rng.Float64() < phoneIssueRate
	hasAddressIssue := g.rng.Float64() < addressIssueRate
	hasCredentialIssue := g.rng.Float64() < credentialIssueRate

	region := regions[g.rng.Intn(len(regions))]
	city := region.cities[g.rng.Intn(len(region.cities))]
	name := firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]

	phone := fmt.Sprintf("(%s) 555-%04d", region.areaCode, g.rng.Intn(10000))
	if hasPhoneIssue {
		phone = PlaceholderPhone
	}

	address := fmt.Sprintf("%d %s, %s, %s %05d",
		g.rng.Intn(9900)+100,
		streets[g.rng.Intn(len(streets))],
		city,
		region.state,
		g.rng.Intn(90000)+10000,
	)
	if hasAddressIssue {
		address = OutdatedStreet
	}

	status := model.LicenseActive
	if hasCredentialIssue {
		status = model.LicenseUnknown
	}

	affiliations := make([]string, 0, 3)
	for i, count := 0, g.rng.Intn(3)+1; i < count; i++ {
		affiliations = append(affiliations, hospitals[g.rng.Intn(len(hospitals))])
	}

	verified := now.AddDate(0, 0, -(g.rng.Intn(336) + 30))

	return model.ProviderRecord{
		ID:             fmt.Sprintf("prv-%05d", seq),
		NPI:            fmt.Sprintf("1%09d", g.rng.Intn(900000000)+100000000),
		Name:           name,
		Phone:          phone,
		Address:        address,
		Specialty:      specialties[g.rng.Intn(len(specialties))],
		LicenseNumber:  fmt.Sprintf("%s%06d", region.state, g.rng.Intn(900000)+100000),
		LicenseStatus:  status,
		Affiliations:   affiliations,
		LastVerifiedAt: &verified,
		Source:         model.SourceSelfReported,
	}
}

// Stats counts the corruption markers present in a batch.
type Stats struct {
	PhoneIssues      int `json:"phone_issues"`
	AddressIssues    int `json:"address_issues"`
	CredentialIssues int `json:"credential_issues"`
}

// Tally reports how many generated records carry each marker.
func Tally(records []model.ProviderRecord) Stats {
	var s Stats
	for _, rec := range records {
		if rec.Phone == PlaceholderPhone {
			s.PhoneIssues++
		}
		if rec.Address == OutdatedStreet {
			s.AddressIssues++
		}
		if rec.LicenseStatus == model.LicenseUnknown {
			s.CredentialIssues++
		}
	}
	return s
}
