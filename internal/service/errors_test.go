package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	categories := []error{ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict}
	cases := map[error]error{
		ErrIDRequired:         ErrBadRequest,
		ErrReaderNil:          ErrBadRequest,
		ErrDocumentIDRequired: ErrBadRequest,
		ErrInvalidExpiration:  ErrBadRequest,
		ErrInvalidYear:        ErrBadRequest,
		ErrTitleRequired:      ErrBadRequest,
		ErrUnsupportedType:    ErrBadRequest,
		ErrParamsRequired:     ErrBadRequest,
		ErrInvalidPath:        ErrBadRequest,
		ErrInvalidStatus:      ErrBadRequest,
		ErrLinkExpired:        ErrUnauthorized,
		ErrInvalidCredentials: ErrUnauthorized,
		ErrNoSession:          ErrUnauthorized,
		ErrInvalidLink:        ErrForbidden,
		ErrDocumentNotFound:   ErrNotFound,
		ErrFileNotFound:       ErrNotFound,
		ErrShareLinkNotFound:  ErrNotFound,
		ErrRequestNotFound:    ErrNotFound,
		ErrEmailTaken:         ErrConflict,
		ErrAlreadyDecided:     ErrConflict,
	}
	for err, want := range cases {
		for _, c := range categories {
			assert.Equal(t, c == want, errors.Is(err, c), "%v in %v", err, c)
		}
	}
	for _, c := range categories {
		assert.False(t, errors.Is(ErrStorage, c), "storage failures carry no HTTP category")
	}
}
