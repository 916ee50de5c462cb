package handler

import (
	"settlement-core/internal/adapter/http/dto"
	"settlement-core/internal/adapter/http/middleware"
	"settlement-core/internal/core/domain"
	"settlement-core/pkg/apperror"
	"settlement-core/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actor returns the authenticated caller or writes 401.
func actor(c *gin.Context) (domain.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return domain.Actor{}, false
	}
	return a, true
}

// pathID parses the :id route parameter or writes 400.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("Invalid id"))
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes and validates the JSON body or writes 400.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return false
	}
	return true
}

// listLimit reads ?limit=; zero lets the service pick its default.
func listLimit(c *gin.Context) (int, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return 0, false
	}
	return q.Limit, true
}
