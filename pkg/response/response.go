package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// Response is the envelope every endpoint writes.
// Code 0 means success. Meta is only present on paginated lists.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Meta    *PageMeta   `json:"meta,omitempty"`
	Data    interface{} `json:"data"`
}

// PageMeta describes the page window of a list response.
type PageMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Success writes a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// SuccessWithPage writes a list page with its meta block.
func SuccessWithPage(c *gin.Context, list interface{}, page, limit int, total int64) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Meta: &PageMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
		Data: list,
	})
}

// Error renders err. AppErrors keep their code and status, anything else
// becomes a 500. The internal cause is logged, never returned.
//
//	b, err := uc.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)

	if appErr.Err != nil {
		entry := logrus.WithFields(logrus.Fields{
			"code":   appErr.Code,
			"path":   c.FullPath(),
			"method": c.Request.Method,
		})
		if requestID, ok := c.Get("request_id"); ok {
			entry = entry.WithField("request_id", requestID)
		}
		entry.WithError(appErr.Err).Error(appErr.Message)
	}

	c.JSON(appErr.HTTPStatus(), Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    nil,
	})
}

// ErrorWithCode writes an ad-hoc error code and message.
func ErrorWithCode(c *gin.Context, code int, message string) {
	Error(c, apperrors.New(code, message))
}
