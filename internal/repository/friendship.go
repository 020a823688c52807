package repository

import (
	"context"

	"amizades/internal/models"
	"amizades/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository owns the canonical friendship edges.
type FriendshipRepository interface {
	Exists(ctx context.Context, a, b string) (bool, error)
	Create(ctx context.Context, a, b string) error
	ListFriendIDs(ctx context.Context, userID string) ([]string, error)
	WithTx(tx *gorm.DB) FriendshipRepository
}

type friendshipRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFriendshipRepository creates a new friendship repository
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db, log: observability.NewRepoLogger("friendships")}
}

// WithTx binds the repository to tx.
func (r *friendshipRepository) WithTx(tx *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: tx, log: r.log}
}

// Exists reports whether a and b are friends, in either argument order.
func (r *friendshipRepository) Exists(ctx context.Context, a, b string) (bool, error) {
	ctx, done := observeQuery(ctx, "exists", "friendships")
	defer done()

	lo, hi := models.CanonicalPair(a, b)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Friendship{}).
		Where("user1_id = ? AND user2_id = ?", lo, hi).
		Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Create inserts the canonical edge for a and b. An existing edge is left untouched.
func (r *friendshipRepository) Create(ctx context.Context, a, b string) error {
	ctx, done := observeQuery(ctx, "create", "friendships")
	defer done()

	f := models.NewFriendship(a, b)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(f)
	if res.Error != nil {
		if models.IsCode(res.Error, models.CodeValidation) {
			return res.Error
		}
		r.log.LogError(ctx, res.Error, "create")
		return models.NewInternalError(res.Error)
	}
	r.log.LogCreate(ctx, map[string]any{
		"user1_id": f.User1ID,
		"user2_id": f.User2ID,
		"inserted": res.RowsAffected > 0,
	})
	return nil
}

// ListFriendIDs returns the ids of userID's friends, most recent first.
func (r *friendshipRepository) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, done := observeQuery(ctx, "list", "friendships")
	defer done()

	var rows []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}

	ids := make([]string, 0, len(rows))
	for _, f := range rows {
		ids = append(ids, f.Other(userID))
	}
	return ids, nil
}
