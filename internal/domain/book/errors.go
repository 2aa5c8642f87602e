package book

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

var (
	// ErrBookNotFound is returned by repositories for a missing id. The
	// domain service turns it into a nil result.
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "book not found")

	ErrInvalidGenre = apperrors.New(apperrors.ErrCodeInvalidGenre, "genre is not one of the supported genres")

	// ErrEmptyMembers rejects a reading status payload without an acting user.
	ErrEmptyMembers = apperrors.New(apperrors.ErrCodeEmptyMembers, "at least one email is required")

	ErrInvalidStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "unknown reading status")
)
