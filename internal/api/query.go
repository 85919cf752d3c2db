// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"net/http"

	"github.com/alvinbaena/pwdcheck/internal/report"
	"github.com/alvinbaena/pwdcheck/pkg/hibp"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type queryApi struct {
	checker *hibp.Checker
}

func (q *queryApi) checkPassword(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := q.checker.Check(c.Request.Context(), req.Password)
	if err != nil {
		lookupFailed(c, err)
		return
	}

	strength := report.Estimate(req.Password)
	c.JSON(http.StatusOK, queryResponse{
		Pwned:    result.Pwned(),
		Count:    result.Count,
		Strength: &strength,
	})
}

func (q *queryApi) checkHash(c *gin.Context) {
	var req hashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := q.checker.CheckHash(c.Request.Context(), req.Hash)
	if err != nil {
		lookupFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, queryResponse{Pwned: result.Pwned(), Count: result.Count})
}

func lookupFailed(c *gin.Context, err error) {
	var apiErr *hibp.APIError
	switch {
	case errors.Is(err, hibp.ErrInvalidHash):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr), errors.Is(err, hibp.ErrUnreachable), errors.Is(err, hibp.ErrMalformedResponse):
		log.Warn().Err(err).Msg("range lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "temporary": hibp.IsTemporary(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func RegisterQueryApi(group *gin.RouterGroup, checker *hibp.Checker) {
	q := &queryApi{checker: checker}

	group.POST("/password", q.checkPassword)
	group.POST("/hash", q.checkHash)
}
