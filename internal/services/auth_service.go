// internal/services/auth_service.go
package services

import (
	"context"

	"swipevault/internal/config"
	"swipevault/internal/errs"
	"swipevault/internal/models"
	"swipevault/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuthService owns account creation and credential verification. Sessions
// are a single signed cookie (see utils.GenerateSessionToken), not a
// server-side session store.
type AuthService struct {
	userCollection *mongo.Collection
	sessionSecret  []byte
}

func NewAuthService(sessionSecret string) *AuthService {
	return &AuthService{
		userCollection: config.DB.Collection("users"),
		sessionSecret:  []byte(sessionSecret),
	}
}

// Signup creates a new account. Returns errs.Conflict if the email is
// already registered.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) (*models.User, string, error) {
	exists, err := s.emailExists(ctx, req.Email)
	if err != nil {
		return nil, "", errs.Wrap(errs.Transient, "checking existing account", err)
	}
	if exists {
		return nil, "", errs.New(errs.Conflict, "an account with this email already exists")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, "", errs.Wrap(errs.Transient, "hashing password", err)
	}

	user := &models.User{
		ID:           utils.NewID(),
		Email:        req.Email,
		PasswordHash: hashed,
	}
	user.BeforeCreate()

	if _, err := s.userCollection.InsertOne(ctx, user); err != nil {
		return nil, "", errs.Wrap(errs.Transient, "creating account", err)
	}

	token, _, err := utils.GenerateSessionToken(user.ID, s.sessionSecret)
	if err != nil {
		return nil, "", errs.Wrap(errs.Transient, "issuing session", err)
	}

	return user, token, nil
}

// Login verifies credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, string, error) {
	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{
		"email":      req.Email,
		"deleted_at": bson.M{"$exists": false},
	}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, "", errs.New(errs.Validation, "invalid email or password")
		}
		return nil, "", errs.Wrap(errs.Transient, "looking up account", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, "", errs.New(errs.Validation, "invalid email or password")
	}

	token, _, err := utils.GenerateSessionToken(user.ID, s.sessionSecret)
	if err != nil {
		return nil, "", errs.Wrap(errs.Transient, "issuing session", err)
	}

	return &user, token, nil
}

// GetUserByID loads the current user for session validation / GET /auth/me.
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{
		"_id":        userID,
		"deleted_at": bson.M{"$exists": false},
	}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errs.New(errs.NotFound, "user not found")
		}
		return nil, errs.Wrap(errs.Transient, "looking up account", err)
	}
	return &user, nil
}

func (s *AuthService) emailExists(ctx context.Context, email string) (bool, error) {
	count, err := s.userCollection.CountDocuments(ctx, bson.M{
		"email":      email,
		"deleted_at": bson.M{"$exists": false},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
