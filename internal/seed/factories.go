// Package seed provides helpers to create demo data for the relationship
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"

	"amizades/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds directory profiles with plausible display fields.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory. A zero seed draws from a random source.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// BuildProfile constructs a profile but does not persist it.
func (f *Factory) BuildProfile(overrides ...func(*models.Profile)) models.Profile {
	first := f.faker.FirstName()
	last := f.faker.LastName()
	username := strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, f.faker.Number(10, 9999)))

	p := models.Profile{
		ID:        f.faker.UUID(),
		Username:  username,
		FullName:  first + " " + last,
		Email:     username + "@" + f.faker.DomainName(),
		AvatarURL: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", username),
		Bio:       f.faker.Sentence(8),
	}
	for _, override := range overrides {
		override(&p)
	}
	return p
}

// BuildProfiles constructs n profiles with unique ids and usernames.
func (f *Factory) BuildProfiles(n int) []models.Profile {
	profiles := make([]models.Profile, 0, n)
	seen := make(map[string]bool, n)
	for len(profiles) < n {
		p := f.BuildProfile()
		if seen[p.Username] {
			continue
		}
		seen[p.Username] = true
		profiles = append(profiles, p)
	}
	return profiles
}

// Intn returns a pseudo-random number in [0, n).
func (f *Factory) Intn(n int) int {
	return f.faker.IntRange(0, n-1)
}
