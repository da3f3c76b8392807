package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := Newf("camera %d not found", 3).Build()
	require.NotNil(t, err, "expected non-nil error")
	assert.Equal(t, "camera 3 not found", err.Error(), "expected formatted message")
	assert.Equal(t, string(CategoryGeneric), err.GetCategory(), "expected generic category by default")
	assert.Equal(t, ComponentUnknown, err.GetComponent(), "expected unknown component by default")
}

func TestBuilderFields(t *testing.T) {
	t.Parallel()

	err := Newf("limit reached").
		Component("station").
		Category(CategoryLimit).
		Context("cameras", 4).
		Build()

	assert.Equal(t, "station", err.GetComponent(), "expected component to round-trip")
	assert.Equal(t, string(CategoryLimit), err.GetCategory(), "expected limit category")

	ctx := err.GetContext()
	require.NotNil(t, ctx, "expected context map")
	assert.Equal(t, 4, ctx["cameras"], "expected context value")
}

func TestContextCopyIsolation(t *testing.T) {
	t.Parallel()

	err := Newf("boom").Context("key", "original").Build()
	ctx := err.GetContext()
	ctx["key"] = "mutated"

	assert.Equal(t, "original", err.GetContext()["key"], "expected internal context unaffected by mutation of the copy")
}

func TestUnwrapPreservesChain(t *testing.T) {
	t.Parallel()

	sentinel := fmt.Errorf("sentinel")
	wrapped := New(fmt.Errorf("outer: %w", sentinel)).Category(CategoryNetwork).Build()

	assert.True(t, Is(wrapped, sentinel), "expected errors.Is to see through the wrapper")
}

func TestHasCategory(t *testing.T) {
	t.Parallel()

	err := Newf("no permission").Category(CategoryAuthorization).Build()
	assert.True(t, HasCategory(err, CategoryAuthorization), "expected authorization category match")
	assert.False(t, HasCategory(err, CategoryServerRejected), "expected mismatch for other category")
	assert.False(t, HasCategory(fmt.Errorf("plain"), CategoryAuthorization), "expected plain errors to have no category")

	wrapped := fmt.Errorf("context: %w", err)
	assert.True(t, HasCategory(wrapped, CategoryAuthorization), "expected category match through wrapping")
}
