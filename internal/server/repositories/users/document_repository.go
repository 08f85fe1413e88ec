// Package users stores accounts in the "users" collection.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/rackbook/internal/common"
	"github.com/dmitrijs2005/rackbook/internal/server/docstore"
	"github.com/dmitrijs2005/rackbook/internal/server/idalloc"
	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

type DocumentRepository struct {
	store *docstore.Store
	ids   idalloc.Strategy
}

func NewDocumentRepository(s *docstore.Store, ids idalloc.Strategy) *DocumentRepository {
	return &DocumentRepository{store: s, ids: ids}
}

func (r *DocumentRepository) List(ctx context.Context) ([]models.User, error) {
	return docstore.LoadAll[models.User](ctx, r.store, docstore.Users)
}

// GetUserByEmail matches emails case-insensitively.
func (r *DocumentRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

// Create appends the user unless the email is taken (common.ErrEmailExists).
func (r *DocumentRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	var created models.User
	err := docstore.Mutate(ctx, r.store, docstore.Users, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if strings.EqualFold(u.Email, user.Email) {
				return nil, fmt.Errorf("%s: %w", user.Email, common.ErrEmailExists)
			}
		}
		created = *user
		created.ID = r.ids.Next(idalloc.IDs(users, userID))
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func userID(u models.User) int64 { return u.ID }
