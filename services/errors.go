package services

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNotFound: the post, comment or reply id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the actor fails the ownership rule for the operation.
	ErrForbidden = errors.New("not authorized")
	// ErrEmptyText: comment or reply text is empty after trimming.
	ErrEmptyText = errors.New("text required")
)

// ConflictError reports a duplicate upload that was merged instead of
// inserted: the actor was credited as a contributor on the existing post.
type ConflictError struct {
	Message  string
	Existing bson.ObjectID
}

func (e *ConflictError) Error() string { return e.Message }
