package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/web3voice/voice-dao/src/gov"
)

func TestFailStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{gov.ErrUnauthorized, http.StatusForbidden},
		{gov.ErrNotAMember, http.StatusForbidden},
		{gov.ErrProposalNotFound, http.StatusNotFound},
		{gov.ErrVoteNotFound, http.StatusNotFound},
		{gov.ErrProposalNotActive, http.StatusConflict},
		{gov.ErrEnginePaused, http.StatusConflict},
		{gov.ErrAlreadyReviewed, http.StatusConflict},
		{gov.ErrVotingPeriodNotEnded, http.StatusUnprocessableEntity},
		{gov.ErrExecutionDelayNotMet, http.StatusUnprocessableEntity},
		{gov.ErrInsufficientDeposit, http.StatusPaymentRequired},
		{gov.ErrInsufficientFunds, http.StatusPaymentRequired},
		{gov.ErrInvalidPayload, http.StatusBadRequest},
		{gov.ErrSelfDelegation, http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			fail(c, tc.err)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
