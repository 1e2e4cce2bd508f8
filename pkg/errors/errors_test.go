// Package errors_test covers AppError construction, wrapping and the
// error-chain helpers.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/simpol/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"malformed smiles", errors.CodeMalformedSMILES, "unbalanced parentheses"},
		{"invalid param", errors.CodeInvalidParam, "SMILES must not be empty"},
		{"invalid temperature", errors.CodeInvalidTemperature, "T must be positive"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.Contains(t, ae.Stack, "errors_test.go")
		})
	}
}

func TestAppError_ErrorFormat(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeMalformedSMILES, "unterminated bracket atom")
	assert.Equal(t, "[MOL_001] unterminated bracket atom", ae.Error())

	withDetail := ae.WithDetail("smiles=\"[CH4\"")
	assert.Equal(t, "[MOL_001] unterminated bracket atom: smiles=\"[CH4\"", withDetail.Error())
	assert.Empty(t, ae.Detail, "WithDetail must not mutate the receiver")
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	sentinel := stderrors.New("connection refused")
	wrapped := errors.Wrap(sentinel, errors.CodeCacheError, "cache get failed")

	require.NotNil(t, wrapped)
	assert.True(t, stderrors.Is(wrapped, sentinel))
	assert.Equal(t, errors.CodeCacheError, wrapped.Code)
}

func TestWrap_UnknownCodeKeepsOriginal(t *testing.T) {
	t.Parallel()

	inner := errors.InvalidTemperature(-1)
	outer := errors.Wrap(inner, errors.CodeUnknown, "evaluating compound")

	assert.Equal(t, errors.CodeInvalidTemperature, outer.Code)
	assert.True(t, errors.IsInvalidTemperature(outer))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_ThroughFmtWrapping(t *testing.T) {
	t.Parallel()

	base := errors.MalformedSMILES("C(", 1, "unbalanced parentheses")
	err := fmt.Errorf("batch line 3: %w", base)

	assert.True(t, errors.IsMalformedSMILES(err))
	assert.False(t, errors.IsUnknownGroup(err))
	assert.Equal(t, errors.CodeMalformedSMILES, errors.GetCode(err))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeUnknownGroup, errors.GetCode(errors.UnknownGroup(31)))
}

func TestDomainFactories_Detail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `smiles="C(" pos=1`, errors.MalformedSMILES("C(", 1, "x").Detail)
	assert.Equal(t, `smiles="C("`, errors.MalformedSMILES("C(", -1, "x").Detail)
	assert.Equal(t, "id=-2", errors.UnknownGroup(-2).Detail)
	assert.Equal(t, "T=NaN", errors.InvalidTemperature(math.NaN()).Detail)
}

//Personal.AI order the ending
