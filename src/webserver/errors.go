package webserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/web3voice/voice-dao/src/gov"
)

var (
	errBadKey       = errors.New("bad public key length")
	errKeyMismatch  = errors.New("public key does not match address")
	errBadSignature = errors.New("signature verification failed")
)

// fail maps engine errors onto HTTP statuses with the short reason string.
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, gov.ErrUnauthorized),
		errors.Is(err, gov.ErrNotAMember):
		status = http.StatusForbidden
	case errors.Is(err, gov.ErrProposalNotFound),
		errors.Is(err, gov.ErrMemberNotFound),
		errors.Is(err, gov.ErrContributionNotFound),
		errors.Is(err, gov.ErrVoteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gov.ErrProposalNotActive),
		errors.Is(err, gov.ErrProposalNotSucceeded),
		errors.Is(err, gov.ErrProposalNotQueued),
		errors.Is(err, gov.ErrAlreadyReviewed),
		errors.Is(err, gov.ErrEnginePaused):
		status = http.StatusConflict
	case errors.Is(err, gov.ErrVotingClosed),
		errors.Is(err, gov.ErrVotingPeriodNotEnded),
		errors.Is(err, gov.ErrExecutionDelayNotMet):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, gov.ErrInsufficientDeposit),
		errors.Is(err, gov.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, gov.ErrTooManyActiveProposals),
		errors.Is(err, gov.ErrNoVotingPower),
		errors.Is(err, gov.ErrAlreadyMember),
		errors.Is(err, gov.ErrSelfDelegation),
		errors.Is(err, gov.ErrInvalidPayload),
		errors.Is(err, gov.ErrInvalidVote):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"err": err.Error()})
}
