package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestNewfError() {
	err := Newf(ErrCodeAccountNotFound, "account %s not found", "acc-1")
	suite.Equal(ErrCodeAccountNotFound, err.Code)
	suite.Equal("account acc-1 not found", err.Message)
}

func (suite *ErrorTestSuite) TestWrapError() {
	cause := errors.New("disk full")
	err := Wrap(ErrCodePersistenceFailed, "failed to write trade", cause)
	suite.Equal(cause, err.Unwrap())
	suite.Equal("[900] failed to write trade: disk full", err.Error())
	suite.True(errors.Is(err, cause))
}

func (suite *ErrorTestSuite) TestWrapfError() {
	cause := errors.New("timeout")
	err := Wrapf(ErrCodeVenueTimeout, cause, "no ack for command %s", "cmd-1")
	suite.Equal("no ack for command cmd-1", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestGetCode() {
	suite.Equal(ErrCodeFeedStale, GetCode(New(ErrCodeFeedStale, "stale")))
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))

	wrapped := Wrap(ErrCodeQueryFailed, "outer", New(ErrCodeDataNotFound, "inner"))
	suite.Equal(ErrCodeQueryFailed, GetCode(wrapped))
	suite.True(HasCode(wrapped, ErrCodeQueryFailed))
	suite.False(HasCode(wrapped, ErrCodeDataNotFound))
}

func (suite *ErrorTestSuite) TestAsError() {
	err := fmt.Errorf("context: %w", New(ErrCodeInvalidCommand, "bad command"))

	var coded *Error
	suite.True(As(err, &coded))
	suite.Equal(ErrCodeInvalidCommand, coded.Code)

	var pathErr *fs.PathError
	suite.False(As(err, &pathErr))
	suite.True(As(fmt.Errorf("open: %w", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}), &pathErr))
	suite.Equal("x", pathErr.Path)
}

func (suite *ErrorTestSuite) TestCategoryPredicates() {
	tests := []struct {
		name        string
		err         error
		feed        bool
		venue       bool
		persistence bool
		invariant   bool
	}{
		{
			name: "stale feed",
			err:  New(ErrCodeFeedStale, "stale"),
			feed: true,
		},
		{
			name: "fetch failure wrapped in a plain error",
			err:  fmt.Errorf("cycle: %w", New(ErrCodeMarketDataFetchFailed, "http 502")),
			feed: true,
		},
		{
			name:  "venue timeout",
			err:   New(ErrCodeVenueTimeout, "no ack"),
			venue: true,
		},
		{
			name:  "venue rejection nested under a dispatch failure",
			err:   Wrap(ErrCodeVenueDispatchFailed, "dispatch", New(ErrCodeCommandRejected, "rejected")),
			venue: true,
		},
		{
			name:        "version conflict",
			err:         New(ErrCodeVersionConflict, "stale account"),
			persistence: true,
		},
		{
			name:      "two open trades",
			err:       Wrap(ErrCodeInvariantViolation, "reconcile", New(ErrCodeQueryFailed, "select")),
			invariant: true,
			// the nested query failure is still visible through the chain
			persistence: true,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
		},
		{
			name: "nil",
			err:  nil,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.feed, IsTransientFeedError(tc.err))
			suite.Equal(tc.venue, IsVenueDispatchError(tc.err))
			suite.Equal(tc.persistence, IsPersistenceError(tc.err))
			suite.Equal(tc.invariant, IsInvariantViolation(tc.err))
		})
	}
}

func (suite *ErrorTestSuite) TestErrorCodeValues() {
	suite.Equal(ErrorCode(1), ErrCodeUnknown)
	suite.Equal(ErrorCode(100), ErrCodeInvalidParameter)
	suite.Equal(ErrorCode(200), ErrCodeDataNotFound)
	suite.Equal(ErrorCode(500), ErrCodeOrderFailed)
	suite.Equal(ErrorCode(700), ErrCodeMarketDataFetchFailed)
	suite.Equal(ErrorCode(900), ErrCodePersistenceFailed)
}

func (suite *ErrorTestSuite) TestInsufficientDataError() {
	err := NewInsufficientDataErrorf(22, 10, "XAUUSD", "need %d candles, got %d", 22, 10)
	suite.Equal("need 22 candles, got 10", err.Error())
	suite.Equal(22, err.Required)
	suite.Equal(10, err.Actual)
	suite.True(IsInsufficientDataError(fmt.Errorf("wrapped: %w", err)))
	suite.False(IsInsufficientDataError(errors.New("other")))
	suite.False(IsInsufficientDataError(nil))
}
