package gensi_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/claudehenchoz/gensi"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := gensi.Errorf(gensi.ECONFIG, "index %q: items selector required", "news")

	assert.Equal(t, gensi.ECONFIG, gensi.ErrorCode(err))
	assert.Equal(t, "index \"news\": items selector required", gensi.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, gensi.ErrorCode(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("resolving index: %w", gensi.Errorf(gensi.EFETCH, "HTTP 502"))

	assert.Equal(t, gensi.EFETCH, gensi.ErrorCode(err))
	assert.Equal(t, "HTTP 502", gensi.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, gensi.EINTERNAL, gensi.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, gensi.ErrorMessage(nil))
}
