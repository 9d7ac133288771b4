package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsInnerCode(t *testing.T) {
	inner := MissingCredential("no API key")
	wrapped := Wrap(inner, "failed to build session")

	assert.Equal(t, CodeMissingCredential, GetCode(wrapped))
	assert.Equal(t, "failed to build session: no API key", wrapped.Error())
	assert.True(t, stderrors.Is(wrapped, inner))
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("disk full"), "write %s", "out.csv")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "write out.csv")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
	assert.Nil(t, WithCode(CodeParseError, nil))
}

func TestGetCodeThroughStdlibWrapping(t *testing.T) {
	err := fmt.Errorf("ingest: %w", UnsupportedFile("notes.txt"))

	assert.Equal(t, CodeUnsupportedFile, GetCode(err))
	assert.True(t, HasCode(err, CodeUnsupportedFile))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeExternalService, fmt.Errorf("timeout"))
	assert.Equal(t, CodeExternalService, GetCode(err))
	assert.Equal(t, "timeout", err.Error())

	recoded := WithCode(CodeInternalError, Wrap(fmt.Errorf("dial tcp"), "request failed"))
	assert.Equal(t, CodeInternalError, GetCode(recoded))
	assert.Equal(t, "request failed: dial tcp", recoded.Error())
}

func TestConstructors(t *testing.T) {
	fb := FallbackMissing("./Sample.xlsx", fmt.Errorf("no such file"))
	assert.Equal(t, CodeFallbackMissing, fb.Code)
	assert.Contains(t, fb.Error(), "Sample.xlsx")

	ext := ExternalServiceError("openai", fmt.Errorf("http 401"))
	assert.Equal(t, "openai service error: http 401", ext.Error())

	pe := ParseError("bad quote", nil)
	assert.Equal(t, "bad quote", pe.Error())
}
