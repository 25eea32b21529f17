package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/deskflow/helpdesk-api/internal/domain"
	"github.com/deskflow/helpdesk-api/internal/persistence"
	"github.com/deskflow/helpdesk-api/internal/repository"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("helpdesk"),
		postgres.WithUsername("helpdesk"),
		postgres.WithPassword("helpdesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()), "migrations are idempotent")
	return pool
}

func TestPostgresRepositories(t *testing.T) {
	pool := setupPostgres(t)
	ctx := context.Background()

	users := repository.NewUserRepository(pool)
	tickets := repository.NewTicketRepository(pool)
	books := repository.NewBookRepository(pool)

	t.Run("users", func(t *testing.T) {
		user := &domain.User{Email: "ann@example.com", PasswordHash: "hash", Role: domain.UserRoleAdmin}
		require.NoError(t, users.Create(ctx, user))
		assert.NotZero(t, user.ID)

		err := users.Create(ctx, &domain.User{Email: "ann@example.com", PasswordHash: "hash", Role: domain.UserRoleUser})
		assert.ErrorIs(t, err, repository.ErrConflict)

		found, err := users.GetByEmail(ctx, "ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, domain.UserRoleAdmin, found.Role)

		_, err = users.GetByID(ctx, 999)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("tickets", func(t *testing.T) {
		author := &domain.User{Email: "bob@example.com", PasswordHash: "hash", Role: domain.UserRoleUser}
		require.NoError(t, users.Create(ctx, author))

		var created []*domain.Ticket
		for _, subject := range []string{"first", "second", "third"} {
			ticket := &domain.Ticket{Subject: subject, Content: "body", Status: domain.TicketStatusNew, AuthorID: author.ID}
			require.NoError(t, tickets.Create(ctx, ticket))
			created = append(created, ticket)
		}

		taken, err := tickets.Update(ctx, created[0].ID, domain.TicketPatch{Status: domain.TicketStatusInProgress})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, taken.Status)
		assert.False(t, taken.UpdatedAt.Before(taken.CreatedAt))

		_, err = tickets.Update(ctx, created[1].ID, domain.TicketPatch{Status: domain.TicketStatusInProgress})
		require.NoError(t, err)

		resolution := "fixed"
		completed, err := tickets.Update(ctx, created[2].ID, domain.TicketPatch{Status: domain.TicketStatusCompleted, Resolution: &resolution})
		require.NoError(t, err)
		require.NotNil(t, completed.Resolution)
		assert.Equal(t, "fixed", *completed.Resolution)

		_, err = tickets.Update(ctx, 999999, domain.TicketPatch{Status: domain.TicketStatusNew})
		assert.ErrorIs(t, err, repository.ErrNotFound)

		own, err := tickets.List(ctx, repository.TicketFilter{AuthorID: &author.ID})
		require.NoError(t, err)
		require.Len(t, own, 3)
		assert.Equal(t, created[2].ID, own[0].ID, "newest first")

		reason := "Cancelled by administrator"
		count, err := tickets.UpdateMany(ctx,
			repository.TicketFilter{Statuses: []domain.TicketStatus{domain.TicketStatusInProgress}},
			domain.TicketPatch{Status: domain.TicketStatusCancelled, CancelReason: &reason})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		from := created[0].CreatedAt.Add(-time.Minute)
		to := created[0].CreatedAt.Add(time.Hour)
		windowed, err := tickets.List(ctx, repository.TicketFilter{CreatedFrom: &from, CreatedTo: &to})
		require.NoError(t, err)
		assert.Len(t, windowed, 3)
	})

	t.Run("books", func(t *testing.T) {
		year := 1974
		book := &domain.Book{ID: uuid.NewString(), Title: "The Dispossessed", Author: "Le Guin", PublishedYear: &year}
		require.NoError(t, books.Create(ctx, book))

		title := "Dispossessed"
		updated, err := books.Update(ctx, book.ID, domain.BookPatch{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "Dispossessed", updated.Title)
		assert.Equal(t, "Le Guin", updated.Author)

		other := &domain.Book{ID: uuid.NewString(), Title: "Lathe", Author: "Le Guin"}
		require.NoError(t, books.Create(ctx, other))

		deleted, err := books.DeleteMany(ctx, []string{book.ID, other.ID, uuid.NewString()})
		require.NoError(t, err)
		assert.Len(t, deleted, 2)

		_, err = books.Delete(ctx, book.ID)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}
