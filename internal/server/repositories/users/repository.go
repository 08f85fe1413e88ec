package users

import (
	"context"

	"github.com/dmitrijs2005/rackbook/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}
