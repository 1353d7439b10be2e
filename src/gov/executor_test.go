package gov

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3voice/voice-dao/src/types"
)

func TestExecuteRequiresQueuedAndCouncil(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())

	_, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	assert.ErrorIs(t, err, ErrProposalNotQueued)

	id = env.queuedProposal(t, "alice", "alice", contentPayload())
	_, err = env.engine.ExecuteProposal(ctx, "alice", id)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, types.ProposalStatusQueued, env.proposal(t, id).Status)
}

func TestExecuteTreasurySpend(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)
	env.fundTreasury(t, 1000, 0)

	ctx := context.Background()
	id := env.queuedProposal(t, "alice", "alice",
		treasuryPayload("vendor.voice", 400, FundVoice, "infrastructure"))

	res, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.Equal(t, types.ProposalStatusExecuted, env.proposal(t, id).Status)
	treasury := env.treasury(t)
	assert.Equal(t, uint64(600), treasury.VoiceBalance)
	assert.Equal(t, uint64(400), treasury.TotalSpent)

	var spend types.SpendCategory
	require.NoError(t, env.db.First(&spend, "name = ?", "infrastructure").Error)
	assert.Equal(t, uint64(400), spend.Total)

	// Deposit refund from finalize, then the spend itself.
	require.Len(t, env.transfers.sent, 2)
	assert.Equal(t, sentTransfer{"vendor.voice", 400, TransferTreasurySpend, "proposal-1"}, env.transfers.sent[1])

	require.Len(t, env.sink.executed, 1)
	assert.True(t, env.sink.executed[0].Success)
	assert.Equal(t, testOwner, env.sink.executed[0].Executor)
}

func TestExecuteInsufficientFundsLeavesQueued(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	ctx := context.Background()
	id := env.queuedProposal(t, "alice", "alice",
		treasuryPayload("vendor.voice", 400, FundVoice, "infrastructure"))

	res, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Result, "insufficient")

	// Failure is reported, not reverted: the proposal stays retryable.
	assert.Equal(t, types.ProposalStatusQueued, env.proposal(t, id).Status)
	require.Len(t, env.sink.executed, 1)
	assert.False(t, env.sink.executed[0].Success)

	env.fundTreasury(t, 1000, 0)
	res, err = env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, types.ProposalStatusExecuted, env.proposal(t, id).Status)
}

func TestExecuteNativeSpend(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)
	env.fundTreasury(t, 0, 500)

	ctx := context.Background()
	id := env.queuedProposal(t, "alice", "alice",
		treasuryPayload("vendor.voice", 200, FundNative, "hosting"))

	res, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	require.True(t, res.Success)

	treasury := env.treasury(t)
	assert.Equal(t, uint64(300), treasury.NativeBalance)
	assert.Equal(t, uint64(200), treasury.TotalSpent)
}

func TestExecuteUnsupportedPayload(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	payload := Payload{Kind: PayloadPartnership, Partnership: &Partnership{
		Partner: "acme.voice",
		Terms:   "cross promotion",
	}}

	ctx := context.Background()
	id := env.queuedProposal(t, "alice", "alice", payload)

	res, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Result, "not supported")
	assert.Equal(t, types.ProposalStatusQueued, env.proposal(t, id).Status)
}

func TestExecuteMembershipAddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)
	ctx := context.Background()

	add := Payload{Kind: PayloadMembership, Membership: &MembershipChange{
		Action: "add", Member: "dave", Role: RoleCore,
	}}
	id := env.queuedProposal(t, "alice", "alice", add)
	res, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	require.True(t, res.Success)

	member, err := env.engine.GetMember("dave")
	require.NoError(t, err)
	assert.Equal(t, []string{RoleCore}, member.RoleList)

	// Adding an existing member is an execution failure, not a revert.
	id = env.queuedProposal(t, "alice", "alice", add)
	res, err = env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	assert.False(t, res.Success)

	remove := Payload{Kind: PayloadMembership, Membership: &MembershipChange{
		Action: "remove", Member: "dave",
	}}
	id = env.queuedProposal(t, "alice", "alice", remove)
	res, err = env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = env.engine.GetMember("dave")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestExecuteMembershipRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	payload := Payload{Kind: PayloadMembership, Membership: &MembershipChange{
		Action: "add", Member: "dave", Role: "emperor",
	}}
	id := env.queuedProposal(t, "alice", "alice", payload)

	res, err := env.engine.ExecuteProposal(context.Background(), testOwner, id)
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = env.engine.GetMember("dave")
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestExecuteGovernanceChange(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)
	ctx := context.Background()

	payload := Payload{Kind: PayloadGovernance, Governance: &GovernanceChange{
		Parameter: "quorum_threshold", NewValue: "2000",
	}}
	id := env.queuedProposal(t, "alice", "alice", payload)

	res, err := env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	require.True(t, res.Success)

	cfg, err := env.engine.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, uint32(2000), cfg.QuorumThreshold)

	// Parameters outside the executable set fail without touching config.
	payload.Governance.Parameter = "approval_threshold"
	id = env.queuedProposal(t, "alice", "alice", payload)
	res, err = env.engine.ExecuteProposal(ctx, testOwner, id)
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestExecuteGrant(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)
	env.fundTreasury(t, 1000, 0)

	payload := Payload{Kind: PayloadGrant, Grant: &Grant{
		Recipient:  "builder.voice",
		Amount:     250,
		Milestones: []string{"prototype", "launch"},
		Category:   "grants",
	}}
	id := env.queuedProposal(t, "alice", "alice", payload)

	res, err := env.engine.ExecuteProposal(context.Background(), testOwner, id)
	require.NoError(t, err)
	require.True(t, res.Success)

	treasury := env.treasury(t)
	assert.Equal(t, uint64(750), treasury.VoiceBalance)
	assert.Equal(t, uint64(250), treasury.TotalSpent)

	var spend types.SpendCategory
	require.NoError(t, env.db.First(&spend, "name = ?", "grants").Error)
	assert.Equal(t, uint64(250), spend.Total)

	require.Len(t, env.transfers.sent, 2)
	assert.Equal(t, sentTransfer{"builder.voice", 250, TransferGrant, "proposal-1"}, env.transfers.sent[1])
}

func TestExecuteByCouncilMember(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)
	env.addMember(t, "councillor", 10)
	require.NoError(t, env.engine.AddCouncilMember(context.Background(), testOwner, "councillor"))

	id := env.queuedProposal(t, "alice", "alice", contentPayload())
	res, err := env.engine.ExecuteProposal(context.Background(), "councillor", id)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, types.ProposalStatusExecuted, env.proposal(t, id).Status)
}
