package api

import "github.com/alvinbaena/pwdcheck/internal/report"

type queryRequest struct {
	Password string `json:"password" binding:"required"`
}

type queryResponse struct {
	Pwned    bool             `json:"pwned"`
	Count    uint64           `json:"count"`
	Strength *report.Strength `json:"strength,omitempty"`
}

type hashRequest struct {
	Hash string `json:"hash" binding:"required"`
}
