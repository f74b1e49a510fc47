package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/easygenerator/auth-api/internal/core/domain"
)

func userDoc(id primitive.ObjectID, email string, at time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "John Doe"},
		{Key: "email", Value: email},
		{Key: "password", Value: "$2a$10$hash"},
		{Key: "role", Value: "USER"},
		{Key: "createdAt", Value: at},
		{Key: "updatedAt", Value: at},
	}
}

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	mt.Run("create returns the stored user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u, err := repo.Create(ctx, &domain.User{
			Name: "John Doe", Email: "john@example.com", PasswordHash: "$2a$10$hash",
			Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(u.ID))
		assert.Equal(mt, "john@example.com", u.Email)
		assert.Equal(mt, "$2a$10$hash", u.PasswordHash)
	})

	mt.Run("create maps duplicate key to ErrUserExists", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: users index: email_unique",
		}))

		_, err := repo.Create(ctx, &domain.User{Email: "john@example.com"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("find by id decodes the document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, userDoc(id, "john@example.com", now)))

		u, err := repo.FindByID(ctx, id.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), u.ID)
		assert.Equal(mt, "John Doe", u.Name)
		assert.Equal(mt, domain.RoleUser, u.Role)
		assert.True(mt, u.CreatedAt.Equal(now))
	})

	mt.Run("find by id rejects malformed ids without a round trip", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		_, err := repo.FindByID(ctx, "123")
		assert.ErrorIs(mt, err, domain.ErrInvalidID)
	})

	mt.Run("find by email reports missing users", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("list decodes every document", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		ns := mt.DB.Name() + "." + usersCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			userDoc(primitive.NewObjectID(), "a@example.com", now),
			userDoc(primitive.NewObjectID(), "b@example.com", now),
		))

		users, err := repo.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "a@example.com", users[0].Email)
		assert.Equal(mt, "b@example.com", users[1].Email)
	})

	mt.Run("update returns the document after the change", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: userDoc(id, "new@example.com", now)},
		})

		email := "new@example.com"
		u, err := repo.Update(ctx, id.Hex(), domain.UserChanges{Email: &email, UpdatedAt: now})
		require.NoError(mt, err)
		assert.Equal(mt, "new@example.com", u.Email)
	})

	mt.Run("update of a missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: nil}})

		name := "x"
		_, err := repo.Update(ctx, primitive.NewObjectID().Hex(), domain.UserChanges{Name: &name, UpdatedAt: now})
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})

	mt.Run("update to a taken email", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 11000, Name: "DuplicateKey", Message: "E11000 duplicate key error",
		}))

		email := "taken@example.com"
		_, err := repo.Update(ctx, primitive.NewObjectID().Hex(), domain.UserChanges{Email: &email, UpdatedAt: now})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}})
		require.NoError(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()))

		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}})
		assert.ErrorIs(mt, repo.Delete(ctx, primitive.NewObjectID().Hex()), domain.ErrUserNotFound)

		assert.ErrorIs(mt, repo.Delete(ctx, "not-an-id"), domain.ErrInvalidID)
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		assert.NoError(mt, repo.EnsureIndexes(ctx))
	})
}
