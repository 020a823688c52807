package seed

import (
	"context"
	"fmt"
	"log/slog"

	"amizades/internal/middleware"
	"amizades/internal/models"
	"amizades/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	// NumProfiles generated when no fixture is given.
	NumProfiles int
	// FriendsPerProfile is the average number of friendships per generated profile.
	FriendsPerProfile int
	// RequestsPerProfile is the average number of pending requests per generated profile.
	RequestsPerProfile int
	ShouldClean        bool
	// RandSeed makes generated data reproducible when non-zero.
	RandSeed int64
}

// Result counts what a seeding run wrote.
type Result struct {
	Profiles    int
	Friendships int
	Requests    int
}

// Seeder writes profiles and relationship edges. Edges go through the
// repositories so the pair invariants hold for seeded data too.
type Seeder struct {
	db          *gorm.DB
	opts        Options
	factory     *Factory
	requests    repository.RequestRepository
	friendships repository.FriendshipRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{
		db:          db,
		opts:        opts,
		factory:     NewFactory(opts.RandSeed),
		requests:    repository.NewRequestRepository(db),
		friendships: repository.NewFriendshipRepository(db),
	}
}

// ClearAll removes every profile, request and friendship.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []any{&models.Friendship{}, &models.FriendRequest{}, &models.Profile{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// ApplyFixture loads a fixture into the database.
func (s *Seeder) ApplyFixture(ctx context.Context, f *Fixture) (Result, error) {
	if err := s.clean(ctx); err != nil {
		return Result{}, err
	}
	if err := s.upsertProfiles(ctx, f.Profiles); err != nil {
		return Result{}, err
	}

	res := Result{Profiles: len(f.Profiles)}
	for _, pair := range f.Friendships {
		if err := s.friendships.Create(ctx, pair[0], pair[1]); err != nil {
			return res, fmt.Errorf("friendship %s-%s: %w", pair[0], pair[1], err)
		}
		res.Friendships++
	}
	for _, r := range f.Requests {
		if _, err := s.requests.Send(ctx, r.From, r.To); err != nil {
			return res, fmt.Errorf("request %s->%s: %w", r.From, r.To, err)
		}
		res.Requests++
	}
	return res, nil
}

// SeedSocialMesh generates profiles and connects them with random friendships
// and pending requests. Pairs that would break an invariant are skipped.
func (s *Seeder) SeedSocialMesh(ctx context.Context) (Result, error) {
	if err := s.clean(ctx); err != nil {
		return Result{}, err
	}

	profiles := s.factory.BuildProfiles(s.opts.NumProfiles)
	if err := s.upsertProfiles(ctx, profiles); err != nil {
		return Result{}, err
	}
	res := Result{Profiles: len(profiles)}
	if len(profiles) < 2 {
		return res, nil
	}

	for i := 0; i < len(profiles)*s.opts.FriendsPerProfile/2; i++ {
		a, b := s.pickPair(profiles)
		if err := s.friendships.Create(ctx, a, b); err != nil {
			return res, err
		}
		res.Friendships++
	}

	for i := 0; i < len(profiles)*s.opts.RequestsPerProfile; i++ {
		a, b := s.pickPair(profiles)
		if _, err := s.requests.Send(ctx, a, b); err != nil {
			if models.IsCode(err, models.CodeConflict) {
				continue
			}
			return res, err
		}
		res.Requests++
	}

	// Duplicate picks collapse onto one edge.
	var friendships int64
	if err := s.db.WithContext(ctx).Model(&models.Friendship{}).Count(&friendships).Error; err != nil {
		return res, err
	}
	res.Friendships = int(friendships)

	middleware.Logger.InfoContext(ctx, "seeded social mesh",
		slog.Int("profiles", res.Profiles),
		slog.Int("friendships", res.Friendships),
		slog.Int("requests", res.Requests),
	)
	return res, nil
}

func (s *Seeder) clean(ctx context.Context) error {
	if !s.opts.ShouldClean {
		return nil
	}
	return s.ClearAll(ctx)
}

func (s *Seeder) upsertProfiles(ctx context.Context, profiles []models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "full_name", "email", "avatar_url", "bio"}),
	}).CreateInBatches(profiles, 100).Error
}

func (s *Seeder) pickPair(profiles []models.Profile) (string, string) {
	i := s.factory.Intn(len(profiles))
	j := s.factory.Intn(len(profiles) - 1)
	if j >= i {
		j++
	}
	return profiles[i].ID, profiles[j].ID
}
