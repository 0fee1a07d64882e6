package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/studyshare/internal/app/system/normalize"
	"github.com/dalemusser/studyshare/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password Create accepts.
const MinPasswordLength = 6

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrBadCredentials is returned by Authenticate for an unknown email or a
	// wrong password alike.
	ErrBadCredentials = errors.New("invalid email or password")

	errEmailRequired = errors.New("email is required")
	errShortPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes makes email_ci unique.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// IsValidationError reports whether err came from input checks in Create.
func IsValidationError(err error) bool {
	return errors.Is(err, errEmailRequired) || errors.Is(err, errShortPassword)
}

// Create registers a password user. The password is stored as a bcrypt hash.
func (s *Store) Create(ctx context.Context, fullName, email, password string) (models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return models.User{}, errEmailRequired
	}
	if len(password) < MinPasswordLength {
		return models.User{}, errShortPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     normalize.Name(fullName),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: string(hash),
		AuthMethod:   models.AuthMethodPassword,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate checks an email/password pair. The returned user is non-nil
// whenever the email exists, even if the password was wrong, so callers can
// audit the attempt against the account.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return u, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return u, ErrBadCredentials
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertGoogle returns the user for a verified Google email, creating it on
// first sign-in. An existing password account keeps its auth method.
func (s *Store) UpsertGoogle(ctx context.Context, fullName, email string) (*models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return nil, errEmailRequired
	}
	now := time.Now().UTC()
	filter := bson.M{"email_ci": text.Fold(email)}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":         primitive.NewObjectID(),
		"full_name":   normalize.Name(fullName),
		"email":       email,
		"email_ci":    text.Fold(email),
		"auth_method": models.AuthMethodGoogle,
		"created_at":  now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var u models.User
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
