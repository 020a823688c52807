// Package service contains the relationship state machine: friend requests and the friendships they produce.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"amizades/internal/events"
	"amizades/internal/middleware"
	"amizades/internal/models"
	"amizades/internal/observability"
	"amizades/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	publishTimeout    = 5 * time.Second
	maxAcceptAttempts = 3

	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ProfileDirectory resolves user ids to display profiles.
type ProfileDirectory interface {
	Search(ctx context.Context, query, excludeID string, limit int) ([]models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Profile, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Options tunes search behavior.
type Options struct {
	SearchMinQuery    int
	SearchLimit       int
	SearchConcurrency int
}

// Deps groups the collaborators of RelationshipService.
type Deps struct {
	DB          *gorm.DB
	Requests    repository.RequestRepository
	Friendships repository.FriendshipRepository
	Profiles    ProfileDirectory
	Publisher   events.Publisher
	Options     Options
}

// RelationshipService orchestrates send, accept and reject and answers status queries.
// Accept is the only operation that spans both stores and the only one run in a transaction.
type RelationshipService struct {
	db          *gorm.DB
	requests    repository.RequestRepository
	friendships repository.FriendshipRepository
	profiles    ProfileDirectory
	publisher   events.Publisher
	opts        Options
}

// NewRelationshipService returns a new RelationshipService.
func NewRelationshipService(d Deps) *RelationshipService {
	opts := d.Options
	if opts.SearchMinQuery < 1 {
		opts.SearchMinQuery = 2
	}
	if opts.SearchLimit < 1 {
		opts.SearchLimit = 20
	}
	if opts.SearchConcurrency < 1 {
		opts.SearchConcurrency = 8
	}
	return &RelationshipService{
		db:          d.DB,
		requests:    d.Requests,
		friendships: d.Friendships,
		profiles:    d.Profiles,
		publisher:   d.Publisher,
		opts:        opts,
	}
}

// SendRequest creates a pending request from senderID to receiverID.
func (s *RelationshipService) SendRequest(ctx context.Context, senderID, receiverID string) (req *models.FriendRequest, err error) {
	ctx, span := s.start(ctx, "send", senderID, receiverID)
	defer func() { s.finish(ctx, span, "send", err) }()

	if strings.TrimSpace(receiverID) == "" {
		return nil, models.NewValidationError("Receiver ID is required")
	}
	if senderID == receiverID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	exists, err := s.profiles.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Receiver not found")
	}

	req, err = s.requests.Send(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.RequestSent, senderID, receiverID))
	return req, nil
}

// AcceptRequest accepts the pending request senderID sent to receiverID and creates the friendship.
// The status flip and the edge insert commit together or not at all. Of two racing accepts
// for the same request exactly one succeeds; the other sees NotFound.
func (s *RelationshipService) AcceptRequest(ctx context.Context, senderID, receiverID string) (err error) {
	ctx, span := s.start(ctx, "accept", senderID, receiverID)
	defer func() { s.finish(ctx, span, "accept", err) }()

	if strings.TrimSpace(senderID) == "" {
		return models.NewValidationError("Sender ID is required")
	}

	attempts, err := s.acceptTx(ctx, senderID, receiverID)
	observability.AcceptAttempts.Observe(float64(attempts))
	span.SetAttempts(attempts)

	if err != nil {
		var appErr *models.AppError
		if !errors.As(err, &appErr) {
			err = models.NewInternalError(err)
		}
		if models.IsCode(err, models.CodeInternal) {
			middleware.Logger.ErrorContext(ctx, "accept transaction failed",
				slog.String("sender_id", senderID),
				slog.String("receiver_id", receiverID),
				slog.Int("attempt", attempts),
				slog.String("error", err.Error()),
			)
		}
		return err
	}

	if attempts > 1 {
		middleware.Logger.InfoContext(ctx, "accept committed after retry",
			slog.String("sender_id", senderID),
			slog.String("receiver_id", receiverID),
			slog.Int("attempts", attempts),
		)
	}
	s.publish(ctx, events.New(events.RequestAccepted, senderID, receiverID))
	return nil
}

// RejectRequest deletes the pending request senderID sent to receiverID.
func (s *RelationshipService) RejectRequest(ctx context.Context, senderID, receiverID string) (err error) {
	ctx, span := s.start(ctx, "reject", senderID, receiverID)
	defer func() { s.finish(ctx, span, "reject", err) }()

	if strings.TrimSpace(senderID) == "" {
		return models.NewValidationError("Sender ID is required")
	}
	if err = s.requests.Reject(ctx, senderID, receiverID); err != nil {
		return err
	}

	s.publish(ctx, events.New(events.RequestRejected, senderID, receiverID))
	return nil
}

// GetStatus reports the relationship between a and b as seen by a.
func (s *RelationshipService) GetStatus(ctx context.Context, a, b string) (status models.FriendStatus, err error) {
	ctx, span := s.start(ctx, "status", a, b)
	defer func() { s.finish(ctx, span, "status", err) }()

	if strings.TrimSpace(b) == "" {
		return "", models.NewValidationError("User ID is required")
	}

	friends, err := s.friendships.Exists(ctx, a, b)
	if err != nil {
		return "", err
	}
	if friends {
		return models.FriendStatusFriends, nil
	}

	for _, dir := range []struct {
		sender, receiver string
		status           models.FriendStatus
	}{
		{a, b, models.FriendStatusPendingSent},
		{b, a, models.FriendStatusPendingReceived},
	} {
		_, err := s.requests.FindPending(ctx, dir.sender, dir.receiver)
		if err == nil {
			return dir.status, nil
		}
		if !models.IsCode(err, models.CodeNotFound) {
			return "", err
		}
	}
	return models.FriendStatusNone, nil
}

// ListPending returns the profiles of everyone with a pending request to receiverID.
func (s *RelationshipService) ListPending(ctx context.Context, receiverID string) (profiles []models.Profile, err error) {
	ctx, span := s.start(ctx, "list_pending", "", receiverID)
	defer func() { s.finish(ctx, span, "list_pending", err) }()

	reqs, err := s.requests.ListPending(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.SenderID)
	}
	return s.profiles.GetByIDs(ctx, ids)
}

// CountPending returns how many requests await receiverID.
func (s *RelationshipService) CountPending(ctx context.Context, receiverID string) (count int64, err error) {
	ctx, span := s.start(ctx, "count_pending", "", receiverID)
	defer func() { s.finish(ctx, span, "count_pending", err) }()

	return s.requests.CountPending(ctx, receiverID)
}

// ListFriends returns the profiles of userID's friends.
func (s *RelationshipService) ListFriends(ctx context.Context, userID string) (profiles []models.Profile, err error) {
	ctx, span := s.start(ctx, "list_friends", userID, "")
	defer func() { s.finish(ctx, span, "list_friends", err) }()

	ids, err := s.friendships.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetByIDs(ctx, ids)
}

// Search finds profiles matching query, excluding the caller, and marks which are already friends.
func (s *RelationshipService) Search(ctx context.Context, query, callerID string) (results []models.SearchResult, err error) {
	ctx, span := s.start(ctx, "search", callerID, "")
	defer func() { s.finish(ctx, span, "search", err) }()

	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < s.opts.SearchMinQuery {
		return nil, models.NewValidationError(fmt.Sprintf("Query must be at least %d characters", s.opts.SearchMinQuery))
	}

	hits, err := s.profiles.Search(ctx, query, callerID, s.opts.SearchLimit)
	if err != nil {
		return nil, err
	}

	results = make([]models.SearchResult, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.SearchConcurrency)
	for i, hit := range hits {
		results[i].Profile = hit
		g.Go(func() error {
			friends, err := s.friendships.Exists(gctx, callerID, hit.ID)
			if err != nil {
				return err
			}
			results[i].IsFriend = friends
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// acceptTx runs the accept steps in one transaction, retrying serialization failures.
// The commit error is part of the result: a transaction that did not commit is a failure.
func (s *RelationshipService) acceptTx(ctx context.Context, senderID, receiverID string) (attempts int, err error) {
	for attempts < maxAcceptAttempts {
		attempts++
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			requests := s.requests.WithTx(tx)
			if _, err := requests.FindPending(ctx, senderID, receiverID); err != nil {
				return err
			}
			if err := requests.MarkAccepted(ctx, senderID, receiverID); err != nil {
				return err
			}
			return s.friendships.WithTx(tx).Create(ctx, senderID, receiverID)
		})
		if !isSerializationFailure(err) {
			return attempts, err
		}
	}
	return attempts, err
}

// isSerializationFailure reports a Postgres error that asks the client to retry the transaction.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}

func (s *RelationshipService) start(ctx context.Context, op, senderID, receiverID string) (context.Context, *observability.Span) {
	return observability.StartOperation(ctx, op, senderID, receiverID)
}

func (s *RelationshipService) finish(ctx context.Context, span *observability.Span, op string, err error) {
	outcome := outcomeOf(err)
	observability.RecordOperation(op, outcome)
	if outcome == observability.OutcomeError {
		middleware.Logger.ErrorContext(ctx, "relationship operation failed",
			slog.String("operation", op),
			slog.String("trace_id", span.TraceID()),
			slog.String("error", err.Error()),
		)
	}
	span.Finish(outcome, err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeOK
	case models.IsCode(err, models.CodeValidation):
		return observability.OutcomeValidation
	case models.IsCode(err, models.CodeConflict):
		return observability.OutcomeConflict
	case models.IsCode(err, models.CodeNotFound):
		return observability.OutcomeNotFound
	default:
		return observability.OutcomeError
	}
}

// publish runs after the mutation has committed. Delivery failures are logged and
// never change the result of the operation.
func (s *RelationshipService) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, e); err != nil {
		observability.LogAsyncOperationError(ctx, "publish_event", err, map[string]any{
			"event_id":    e.ID,
			"event_type":  string(e.Type),
			"sender_id":   e.SenderID,
			"receiver_id": e.ReceiverID,
		})
	}
}
