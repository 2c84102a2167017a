package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainuser "rara/internal/domain/user"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(usersCollection)}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	if email == "" {
		return nil, domainuser.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) ByGoogleID(ctx context.Context, googleID string) (*domainuser.User, error) {
	googleID = strings.TrimSpace(googleID)
	if googleID == "" {
		return nil, domainuser.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"google_id": googleID})
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	taken, err := r.col.CountDocuments(ctx, bson.M{"email": u.Email, "_id": bson.M{"$ne": string(u.ID)}})
	if err != nil {
		return err
	}
	if taken > 0 {
		return domainuser.ErrEmailAlreadyUsed
	}
	doc := newUserDocument(u)
	doc.Version = u.Version + 1
	if err := upsertVersioned(ctx, r.col, doc.ID, u.Version, doc); err != nil {
		return err
	}
	u.Version = doc.Version
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if isNotFound(err) {
			return nil, domainuser.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

type userDocument struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash,omitempty"`
	GoogleID     string    `bson:"google_id,omitempty"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Avatar       string    `bson:"avatar"`
	Roles        []string  `bson:"roles"`
	Superhost    bool      `bson:"superhost"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	Version      int64     `bson:"version"`
}

func newUserDocument(u *domainuser.User) userDocument {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return userDocument{
		ID:           string(u.ID),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		GoogleID:     u.GoogleID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.Avatar,
		Roles:        roles,
		Superhost:    u.Superhost,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
		Version:      u.Version,
	}
}

func (d userDocument) toAggregate() *domainuser.User {
	roles := make([]domainuser.Role, 0, len(d.Roles))
	for _, role := range d.Roles {
		roles = append(roles, domainuser.Role(role))
	}
	return &domainuser.User{
		ID:           domainuser.ID(d.ID),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		GoogleID:     d.GoogleID,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Avatar:       d.Avatar,
		Roles:        roles,
		Superhost:    d.Superhost,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
		Version:      d.Version,
	}
}

var _ domainuser.Repository = (*UserRepository)(nil)
