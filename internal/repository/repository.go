package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"

	"compilex/dto"
	"compilex/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// UploadFilter narrows Find. Zero values mean "any".
type UploadFilter struct {
	Type       string
	UploadedBy bson.ObjectID
}

// UploadStore persists whole upload documents. Every nested mutation goes
// through Replace so one save covers the entire comment tree.
type UploadStore interface {
	Insert(ctx context.Context, u *model.Upload) error
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Upload, error)
	Replace(ctx context.Context, u *model.Upload) error
	Delete(ctx context.Context, id bson.ObjectID) error

	// Find returns matching uploads newest first.
	Find(ctx context.Context, f UploadFilter) ([]model.Upload, error)

	// duplicate-detection lookups for create
	FindPYP(ctx context.Context, subject, branch string, semester, year int) (*model.Upload, error)
	FindByFileHash(ctx context.Context, hash string) (*model.Upload, error)

	DistinctSubjects(ctx context.Context, branch string, semester int) ([]string, error)
	SubjectGroups(ctx context.Context, branch string, semester int) ([]dto.SubjectGroup, error)
}

type UserStore interface {
	Insert(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindManyByID resolves authors in bulk; ids that do not resolve are
	// simply absent from the result.
	FindManyByID(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.User, error)
}
