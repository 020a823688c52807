package repository

import (
	"context"
	"regexp"
	"testing"

	"amizades/internal/models"
	"amizades/internal/observability"
	"amizades/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRequestRepository_Send(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	req, err := repo.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.NotZero(t, req.ID)
	assert.Equal(t, models.RequestStatusPending, req.Status)
	assert.False(t, req.CreatedAt.IsZero())

	tests := []struct {
		name     string
		sender   string
		receiver string
		code     string
		message  string
	}{
		{"self request", "carol", "carol", models.CodeValidation, "Cannot send friend request to yourself"},
		{"same direction duplicate", "alice", "bob", models.CodeConflict, MsgRequestExists},
		{"reverse direction duplicate", "bob", "alice", models.CodeConflict, MsgRequestExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Send(ctx, tt.sender, tt.receiver)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, tt.code), err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.FriendRequest{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRequestRepository_SendAlreadyFriends(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	require.NoError(t, NewFriendshipRepository(db).Create(ctx, "alice", "bob"))

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		_, err := repo.Send(ctx, pair[0], pair[1])
		require.Error(t, err)
		assert.True(t, models.IsCode(err, models.CodeConflict))
		assert.Contains(t, err.Error(), MsgAlreadyFriends)
	}
}

func TestRequestRepository_FindPendingIsDirectional(t *testing.T) {
	repo := NewRequestRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := repo.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	found, err := repo.FindPending(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.SenderID)

	_, err = repo.FindPending(ctx, "bob", "alice")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	pending, err := repo.HasPendingBetween(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestRequestRepository_ListAndCountPending(t *testing.T) {
	repo := NewRequestRepository(testutil.NewTestDB(t))
	ctx := context.Background()

	for _, sender := range []string{"alice", "carol", "dave"} {
		_, err := repo.Send(ctx, sender, "bob")
		require.NoError(t, err)
	}
	_, err := repo.Send(ctx, "bob", "erin")
	require.NoError(t, err)
	require.NoError(t, repo.MarkAccepted(ctx, "dave", "bob"))

	reqs, err := repo.ListPending(ctx, "bob")
	require.NoError(t, err)
	senders := make([]string, 0, len(reqs))
	for _, r := range reqs {
		senders = append(senders, r.SenderID)
	}
	assert.ElementsMatch(t, []string{"alice", "carol"}, senders)

	count, err := repo.CountPending(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountPending(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRequestRepository_Reject(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	_, err := repo.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	err = repo.Reject(ctx, "bob", "alice")
	assert.True(t, models.IsCode(err, models.CodeNotFound), "reverse direction must not match")

	require.NoError(t, repo.Reject(ctx, "alice", "bob"))
	assert.True(t, models.IsCode(repo.Reject(ctx, "alice", "bob"), models.CodeNotFound))

	var count int64
	require.NoError(t, db.Model(&models.FriendRequest{}).Count(&count).Error)
	assert.Zero(t, count, "rejected requests are deleted")

	_, err = repo.Send(ctx, "alice", "bob")
	assert.NoError(t, err)
}

func TestRequestRepository_MarkAcceptedOnlyOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	_, err := repo.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	require.NoError(t, repo.MarkAccepted(ctx, "alice", "bob"))
	assert.True(t, models.IsCode(repo.MarkAccepted(ctx, "alice", "bob"), models.CodeNotFound))

	var stored models.FriendRequest
	require.NoError(t, db.Where("sender_id = ? AND receiver_id = ?", "alice", "bob").First(&stored).Error)
	assert.Equal(t, models.RequestStatusAccepted, stored.Status)

	// accepted history does not block a fresh pending row for the same pair
	require.NoError(t, db.Create(&models.FriendRequest{SenderID: "bob", ReceiverID: "alice"}).Error)
}

func TestRequestRepository_WithTxRollsBack(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	_, err := repo.Send(ctx, "alice", "bob")
	require.NoError(t, err)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).MarkAccepted(ctx, "alice", "bob"); err != nil {
			return err
		}
		return models.NewInternalError(assert.AnError)
	})
	require.Error(t, err)

	_, err = repo.FindPending(ctx, "alice", "bob")
	assert.NoError(t, err, "status flip must be rolled back")
}

func TestRequestRepository_SendMapsPostgresUniqueViolation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "friend_requests"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "friendships"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "friend_requests"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: models.PendingPairIndex})
	mock.ExpectRollback()

	_, err = NewRequestRepository(db).Send(context.Background(), "alice", "bob")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_StorageErrorIsInternal(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "friend_requests"`)).
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

	_, err = NewRequestRepository(db).CountPending(context.Background(), "bob")
	require.Error(t, err)
	assert.True(t, models.IsCode(err, models.CodeInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(assert.AnError))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestRequestRepository_QueriesEmitClientSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := observability.Tracer
	observability.Tracer = provider.Tracer("test")
	t.Cleanup(func() {
		observability.Tracer = prev
		_ = provider.Shutdown(context.Background())
	})

	db := testutil.NewTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	_, err := repo.Send(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NoError(t, repo.MarkAccepted(ctx, "alice", "bob"))

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Contains(t, names, "friend_requests.create")
	assert.Contains(t, names, "friend_requests.update")
}
