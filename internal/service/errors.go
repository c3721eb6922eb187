package service

import (
	"errors"
	"fmt"
)

// Category sentinels. Handlers map these to HTTP statuses; concrete errors
// below wrap exactly one of them.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrIDRequired         = fmt.Errorf("%w: id is required", ErrBadRequest)
	ErrReaderNil          = fmt.Errorf("%w: reader is nil", ErrBadRequest)
	ErrDocumentIDRequired = fmt.Errorf("%w: document ID is required", ErrBadRequest)
	ErrInvalidExpiration  = fmt.Errorf("%w: invalid expiration", ErrBadRequest)
	ErrInvalidYear        = fmt.Errorf("%w: year must have four digits", ErrBadRequest)
	ErrTitleRequired      = fmt.Errorf("%w: title is required", ErrBadRequest)
	ErrUnsupportedType    = fmt.Errorf("%w: unsupported file type", ErrBadRequest)
	ErrParamsRequired     = fmt.Errorf("%w: either document ID or path is required", ErrBadRequest)
	ErrInvalidPath        = fmt.Errorf("%w: invalid file path format", ErrBadRequest)
	ErrInvalidStatus      = fmt.Errorf("%w: invalid status", ErrBadRequest)

	ErrLinkExpired        = fmt.Errorf("%w: link expired", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrNoSession          = fmt.Errorf("%w: no session", ErrUnauthorized)

	ErrInvalidLink = fmt.Errorf("%w: invalid or expired link", ErrForbidden)

	ErrDocumentNotFound  = fmt.Errorf("%w: document", ErrNotFound)
	ErrFileNotFound      = fmt.Errorf("%w: file", ErrNotFound)
	ErrShareLinkNotFound = fmt.Errorf("%w: share link", ErrNotFound)
	ErrRequestNotFound   = fmt.Errorf("%w: access request", ErrNotFound)

	ErrEmailTaken     = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyDecided = fmt.Errorf("%w: access request already decided", ErrConflict)

	// ErrStorage marks object storage failures other than a missing key.
	ErrStorage = errors.New("storage failure")
)
