package domain

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const maxTitleLength = 256

// storageError converts an error coming out of a repository or a transaction
// into an errorx error. Errors which are already errorx pass through.
func storageError(ctx context.Context, err error, notFoundMsg string, action string) error {
	var xerr errorx.Error
	if errors.As(err, &xerr) {
		return xerr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.New(errorx.NotFound, notFoundMsg)
	}

	if repository.IsDuplicated(err) || xcontext.IsTransient(err) {
		return errorx.New(errorx.AlreadyExists, "Conflict while trying to %s", action)
	}

	xcontext.Logger(ctx).Errorf("Cannot %s: %v", action, err)
	return errorx.Unknown
}

func checkTitle(title string) error {
	if title == "" {
		return errorx.New(errorx.BadRequest, "Title must not be empty")
	}

	if utf8.RuneCountInString(title) > maxTitleLength {
		return errorx.New(errorx.BadRequest, "Title too long (at most %d characters)", maxTitleLength)
	}

	return nil
}

// checkPagination fills the default limit and rejects out of range values.
func checkPagination(ctx context.Context, offset, limit int) (int, int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	if offset < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	return offset, limit, nil
}

// clock returns the current time in UTC with a precision of one second, the
// precision every storage driver keeps.
type clock func() time.Time

func (c clock) now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Second)
	}

	return c().UTC().Truncate(time.Second)
}
