package repository

import (
	"context"
	"errors"

	"amizades/internal/models"
	"amizades/internal/observability"

	"gorm.io/gorm"
)

// Messages shared with the service layer.
const (
	MsgRequestExists   = "Friend request already exists"
	MsgAlreadyFriends  = "You are already friends"
	MsgRequestNotFound = "No pending friend request found"
)

// RequestRepository owns friend request rows.
type RequestRepository interface {
	Send(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	FindPending(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error)
	ListPending(ctx context.Context, receiverID string) ([]models.FriendRequest, error)
	CountPending(ctx context.Context, receiverID string) (int64, error)
	Reject(ctx context.Context, senderID, receiverID string) error
	MarkAccepted(ctx context.Context, senderID, receiverID string) error
	HasPendingBetween(ctx context.Context, a, b string) (bool, error)
	WithTx(tx *gorm.DB) RequestRepository
}

type requestRepository struct {
	db          *gorm.DB
	friendships FriendshipRepository
	log         *observability.RepoLogger
}

// NewRequestRepository creates a new friend request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{
		db:          db,
		friendships: NewFriendshipRepository(db),
		log:         observability.NewRepoLogger("friend_requests"),
	}
}

// WithTx binds the repository, and its friendship check, to tx.
func (r *requestRepository) WithTx(tx *gorm.DB) RequestRepository {
	return &requestRepository{
		db:          tx,
		friendships: r.friendships.WithTx(tx),
		log:         r.log,
	}
}

// Send inserts a pending request after checking, in order: self-request,
// a pending request in either direction, and an existing friendship.
// The pending-pair unique index turns a lost check-then-insert race into a conflict.
func (r *requestRepository) Send(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	pending, err := r.HasPendingBetween(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, models.NewConflictError(MsgRequestExists)
	}

	friends, err := r.friendships.Exists(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, models.NewConflictError(MsgAlreadyFriends)
	}

	ctx, done := observeQuery(ctx, "create", "friend_requests")
	defer done()
	req := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.RequestStatusPending,
	}
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, models.NewConflictError(MsgRequestExists)
		}
		r.log.LogError(ctx, err, "create")
		return nil, models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]any{"id": req.ID, "sender_id": senderID, "receiver_id": receiverID})
	return req, nil
}

// FindPending looks up the pending request in exactly the sender → receiver direction.
func (r *requestRepository) FindPending(ctx context.Context, senderID, receiverID string) (*models.FriendRequest, error) {
	ctx, done := observeQuery(ctx, "find", "friend_requests")
	defer done()

	var req models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.RequestStatusPending).
		First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError(MsgRequestNotFound)
		}
		r.log.LogError(ctx, err, "find")
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// ListPending returns the pending requests addressed to receiverID, newest first.
func (r *requestRepository) ListPending(ctx context.Context, receiverID string) ([]models.FriendRequest, error) {
	ctx, done := observeQuery(ctx, "list", "friend_requests")
	defer done()

	var reqs []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("receiver_id = ? AND status = ?", receiverID, models.RequestStatusPending).
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

// CountPending counts the pending requests addressed to receiverID.
func (r *requestRepository) CountPending(ctx context.Context, receiverID string) (int64, error) {
	ctx, done := observeQuery(ctx, "count", "friend_requests")
	defer done()

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("receiver_id = ? AND status = ?", receiverID, models.RequestStatusPending).
		Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Reject deletes the pending request in exactly the sender → receiver direction.
func (r *requestRepository) Reject(ctx context.Context, senderID, receiverID string) error {
	ctx, done := observeQuery(ctx, "delete", "friend_requests")
	defer done()

	res := r.db.WithContext(ctx).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.RequestStatusPending).
		Delete(&models.FriendRequest{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(MsgRequestNotFound)
	}
	r.log.LogDelete(ctx, map[string]any{"sender_id": senderID, "receiver_id": receiverID})
	return nil
}

// MarkAccepted flips a pending request to accepted. The status predicate makes the
// losing side of two racing accepts see zero affected rows and return NotFound.
func (r *requestRepository) MarkAccepted(ctx context.Context, senderID, receiverID string) error {
	ctx, done := observeQuery(ctx, "update", "friend_requests")
	defer done()

	res := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.RequestStatusPending).
		Update("status", models.RequestStatusAccepted)
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError(MsgRequestNotFound)
	}
	r.log.LogUpdate(ctx, map[string]any{"sender_id": senderID, "receiver_id": receiverID, "status": models.RequestStatusAccepted})
	return nil
}

// HasPendingBetween reports a pending request between a and b in either direction.
func (r *requestRepository) HasPendingBetween(ctx context.Context, a, b string) (bool, error) {
	ctx, done := observeQuery(ctx, "exists", "friend_requests")
	defer done()

	lo, hi := models.CanonicalPair(a, b)
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("pair_lo = ? AND pair_hi = ? AND status = ?", lo, hi, models.RequestStatusPending).
		Count(&count).Error; err != nil {
		r.log.LogError(ctx, err, "exists")
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
