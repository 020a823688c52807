package repository

import (
	"context"
	"strings"

	"amizades/internal/cache"
	"amizades/internal/models"
	"amizades/internal/observability"

	"gorm.io/gorm"
)

// ProfileRepository reads the profile directory.
type ProfileRepository interface {
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type profileRepository struct {
	db    *gorm.DB
	cache *cache.ProfileCache
	log   *observability.RepoLogger
}

// NewProfileRepository creates a directory reader. A nil cache reads straight from the database.
func NewProfileRepository(db *gorm.DB, profileCache *cache.ProfileCache) ProfileRepository {
	return &profileRepository{db: db, cache: profileCache, log: observability.NewRepoLogger("profiles")}
}

// Search matches query as a case-insensitive substring of username, full name or email.
func (r *profileRepository) Search(ctx context.Context, query, excludeID string, limit int) ([]models.Profile, error) {
	ctx, done := observeQuery(ctx, "search", "profiles")
	defer done()

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).
		Where(`(LOWER(username) LIKE ? ESCAPE '\' OR LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern).
		Where("id <> ?", excludeID).
		Order("username ASC").
		Limit(limit).
		Find(&profiles).Error; err != nil {
		r.log.LogError(ctx, err, "search")
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// GetByIDs returns the profiles for ids in the order given. Unknown ids are skipped.
func (r *profileRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}

	found, missing := r.cache.GetMany(ctx, ids)
	if len(missing) > 0 {
		ctx, done := observeQuery(ctx, "get_by_ids", "profiles")
		defer done()

		var rows []models.Profile
		if err := r.db.WithContext(ctx).Where("id IN ?", missing).Find(&rows).Error; err != nil {
			r.log.LogError(ctx, err, "get_by_ids")
			return nil, models.NewInternalError(err)
		}
		for _, p := range rows {
			found[p.ID] = p
		}
		r.cache.SetMany(ctx, rows)
	}

	profiles := make([]models.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

// Exists reports whether the directory has a profile for id.
func (r *profileRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, done := observeQuery(ctx, "exists", "profiles")
	defer done()

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
