package seller

import (
	"context"
	"errors"
	"strings"

	"harvestmap/apperrors"
	sellerRepo "harvestmap/database/repository/seller"
	"harvestmap/models"

	"go.uber.org/zap"
)

// RegisterRequest is the body of a seller registration.
type RegisterRequest struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

type SellerService interface {
	Register(ctx context.Context, principal string, req RegisterRequest) (*models.Seller, bool, error)
	Get(ctx context.Context, uid string) (*models.Seller, error)
}

type DefaultSellerService struct {
	Repo   sellerRepo.SellerRepository
	Logger *zap.Logger
}

// Register creates the caller's seller record, or renames it if it already
// exists. A principal may only register itself.
func (s *DefaultSellerService) Register(ctx context.Context, principal string, req RegisterRequest) (*models.Seller, bool, error) {
	uid := strings.TrimSpace(req.UID)
	name := strings.TrimSpace(req.Name)
	if uid == "" || name == "" {
		return nil, false, apperrors.Validation(apperrors.CodeMissingField, "UID and name required", nil)
	}
	if principal == "" {
		return nil, false, apperrors.Unauthenticated("authentication required", nil)
	}
	if principal != uid {
		return nil, false, apperrors.Forbidden("cannot register a seller for another account")
	}

	seller, created, err := s.Repo.Upsert(ctx, uid, name)
	if err != nil {
		s.logger().Error("Failed to register seller", zap.String("seller_id", uid), zap.Error(err))
		return nil, false, apperrors.Store("failed to register seller", err)
	}
	s.logger().Info("Seller registered", zap.String("seller_id", uid), zap.Bool("created", created))
	return seller, created, nil
}

func (s *DefaultSellerService) Get(ctx context.Context, uid string) (*models.Seller, error) {
	seller, err := s.Repo.GetByID(ctx, uid)
	if errors.Is(err, sellerRepo.ErrSellerNotFound) {
		return nil, apperrors.NotFound("User not found", err)
	}
	if err != nil {
		s.logger().Error("Failed to load seller", zap.String("seller_id", uid), zap.Error(err))
		return nil, apperrors.Store("failed to load seller", err)
	}
	return seller, nil
}

func (s *DefaultSellerService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
