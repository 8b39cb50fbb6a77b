package procedure

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "session=abc")
	c := echo.New().NewContext(req, httptest.NewRecorder())
	return NewContext(c, nil)
}

func TestRunAndGet(t *testing.T) {
	ctx := newTestContext(t)
	numberKey := NewKey[int]("number")
	wordKey := NewKey[string]("word")

	err := Run(ctx, []Procedure{
		Provide("Number", numberKey, func(*Context) (int, error) { return 42, nil }),
		Provide("Word", wordKey, func(*Context) (string, error) { return "hi", nil }),
	})
	require.NoError(t, err)

	n, err := Get(ctx, numberKey)
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	w, err := Get(ctx, wordKey)
	require.NoError(t, err)
	assert.Equal(t, "hi", w)
}

func TestHeaders_ReturnsFreshCopy(t *testing.T) {
	ctx := newTestContext(t)

	first := ctx.Headers()
	first.Set("Cookie", "session=tampered")
	first.Set("X-Extra", "1")

	second := ctx.Headers()
	assert.Equal(t, "session=abc", second.Get("Cookie"))
	assert.Empty(t, second.Get("X-Extra"))
	assert.Equal(t, "session=abc", ctx.Echo().Request().Header.Get("Cookie"))
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	ctx := newTestContext(t)
	boom := errors.New("boom")
	secondRan := false

	err := Run(ctx, []Procedure{
		Provide("First", NewKey[int]("first"), func(*Context) (int, error) { return 0, boom }),
		Provide("Second", NewKey[int]("second"), func(*Context) (int, error) {
			secondRan = true
			return 1, nil
		}),
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, secondRan)
}

func TestRun_DuplicateCapability(t *testing.T) {
	ctx := newTestContext(t)
	key := NewKey[int]("number")

	err := Run(ctx, []Procedure{
		Provide("A", key, func(*Context) (int, error) { return 1, nil }),
		Provide("B", key, func(*Context) (int, error) { return 2, nil }),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already provided")
}

func TestGet_Missing(t *testing.T) {
	ctx := newTestContext(t)

	_, err := Get(ctx, NewKey[int]("number"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), `"number"`)
}

func TestGet_WrongType(t *testing.T) {
	ctx := newTestContext(t)
	require.NoError(t, Run(ctx, []Procedure{
		Provide("Word", NewKey[string]("value"), func(*Context) (string, error) { return "x", nil }),
	}))

	_, err := Get(ctx, NewKey[int]("value"))

	require.Error(t, err)
}

func TestContext_HeadersAreACopy(t *testing.T) {
	ctx := newTestContext(t)

	ctx.Headers().Set("Cookie", "tampered")

	assert.Equal(t, "session=abc", ctx.Echo().Request().Header.Get("Cookie"))
	assert.NotNil(t, ctx.Logger())
}
