package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAccommodationRepository_CreateExistingMember(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccommodationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accommodation_requests")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}))

	err := repo.Create(context.Background(), nil, &models.AccommodationRequest{
		TeamRequestID: 1,
		TeamMemberID:  2,
		Status:        models.AccommodationPending,
	})

	assert.ErrorIs(t, err, ErrAccommodationExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccommodationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccommodationRepository(db)
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO accommodation_requests")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(31, now, now))

	a := &models.AccommodationRequest{TeamRequestID: 1, TeamMemberID: 2, Status: models.AccommodationPending}
	require.NoError(t, repo.Create(context.Background(), nil, a))
	assert.Equal(t, 31, a.ID)
	assert.Equal(t, now, a.CreatedAt)
}

func TestAccommodationRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccommodationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accommodation_requests WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), nil, 99)
	assert.ErrorIs(t, err, ErrAccommodationNotFound)
}

func TestAccommodationRepository_TransitionStateConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccommodationRepository(db)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accommodation_requests")).
		WithArgs(models.AccommodationHotelApproved, 10, at, 5, models.AccommodationHotelAssigned).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkHotelApproved(context.Background(), nil, 5, 10, at)
	assert.ErrorIs(t, err, ErrAccommodationStateConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccommodationRepository_CheckIn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresAccommodationRepository(db)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("SET check_in_status = $1")).
		WithArgs(models.CheckInCheckedIn, at, 5, models.AccommodationConfirmed, models.CheckInPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.CheckIn(context.Background(), nil, 5, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccommodationRepository_ConfirmMapsDatabaseErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "duplicate confirmation code",
			err:  &pq.Error{Code: pqUniqueViolation, Constraint: "accommodation_requests_confirmation_code_key"},
			want: ErrConfirmationCodeConflict,
		},
		{
			name: "dangling hotel reference",
			err:  &pq.Error{Code: pqForeignKeyViolation, Constraint: "accommodation_requests_hotel_id_fkey"},
			want: ErrAccommodationRefInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewPostgresAccommodationRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE accommodation_requests")).WillReturnError(tc.err)

			err := repo.Confirm(context.Background(), nil, 5, "AB12CD34", "qr-token", time.Now())
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("other qr code collision is not a code conflict", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgresAccommodationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE accommodation_requests")).
			WillReturnError(&pq.Error{Code: pqUniqueViolation, Constraint: "accommodation_requests_qr_code_key"})

		err := repo.Confirm(context.Background(), nil, 5, "AB12CD34", "qr-token", time.Now())
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrConfirmationCodeConflict))
	})
}

func TestRoomCategoryRepository_ReserveAndRelease(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresRoomCategoryRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("SET available_rooms = available_rooms - 1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SET available_rooms = available_rooms - 1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("SET available_rooms = available_rooms + 1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Reserve(ctx, nil, 3))
	assert.ErrorIs(t, repo.Reserve(ctx, nil, 3), ErrNoRoomsAvailable)
	assert.ErrorIs(t, repo.Release(ctx, nil, 3), ErrRoomReleaseOverflow)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTransactor(t *testing.T) {
	t.Run("commits on success", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewPostgresTransactor(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE room_categories").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tx.WithinTx(context.Background(), func(exec SQLExecutor) error {
			return NewPostgresRoomCategoryRepository(db).Reserve(context.Background(), exec, 1)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock := newMockDB(t)
		tx := NewPostgresTransactor(db)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tx.WithinTx(context.Background(), func(exec SQLExecutor) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
