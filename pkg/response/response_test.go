package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/books/1", nil)
	fn(c)

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

// captureStd records entries written to the standard logger, which is the
// one Error logs to.
func captureStd(t *testing.T) *test.Hook {
	t.Helper()
	std := logrus.StandardLogger()
	previous := std.ReplaceHooks(make(logrus.LevelHooks))
	hook := test.NewLocal(std)
	t.Cleanup(func() { std.ReplaceHooks(previous) })
	return hook
}

func TestSuccessAndCreated(t *testing.T) {
	w, body := render(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Code)
	assert.Nil(t, body.Meta)
	assert.NotContains(t, w.Body.String(), `"meta"`)

	w, body = render(t, func(c *gin.Context) { Created(c, gin.H{"id": 1}) })
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "created", body.Message)
}

func TestSuccessWithPage(t *testing.T) {
	w, body := render(t, func(c *gin.Context) { SuccessWithPage(c, []int{1, 2}, 2, 2, 5) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, &PageMeta{Page: 2, Limit: 2, Total: 5}, body.Meta)
	assert.Equal(t, []interface{}{1.0, 2.0}, body.Data)
}

func TestErrorUsesCodeAndHidesCause(t *testing.T) {
	hook := captureStd(t)

	cause := errors.New("dial tcp 10.0.0.3:3306: refused")
	w, body := render(t, func(c *gin.Context) {
		c.Set("request_id", "req-1")
		Error(c, apperrors.ErrDatabaseError.WithCause(cause))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeDatabaseError, body.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, cause, entry.Data[logrus.ErrorKey])
}

func TestErrorWithoutCauseIsNotLogged(t *testing.T) {
	hook := captureStd(t)

	w, body := render(t, func(c *gin.Context) { Error(c, apperrors.ErrNotFound) })
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperrors.ErrCodeNotFound, body.Code)
	assert.Empty(t, hook.AllEntries())
}

func TestErrorWrapsUnknownErrors(t *testing.T) {
	w, body := render(t, func(c *gin.Context) { Error(c, errors.New("surprise")) })
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, body.Code)
	assert.NotContains(t, body.Message, "surprise")
}

func TestErrorWithCode(t *testing.T) {
	w, body := render(t, func(c *gin.Context) { ErrorWithCode(c, apperrors.ErrCodeBindError, "invalid request") })
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request", body.Message)
}
