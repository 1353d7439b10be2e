package gov

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/web3voice/voice-dao/src/data"
	"github.com/web3voice/voice-dao/src/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testOwner = "founder.voice"

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type sentTransfer struct {
	Recipient string
	Amount    uint64
	Kind      string
	Ref       string
}

type recordingTransfers struct {
	sent []sentTransfer
}

func (r *recordingTransfers) Transfer(_ context.Context, recipient string, amount uint64, kind, ref string) {
	r.sent = append(r.sent, sentTransfer{recipient, amount, kind, ref})
}

type recordingSink struct {
	created  []ProposalCreatedEvent
	votes    []VoteCastEvent
	executed []ProposalExecutedEvent
}

func (r *recordingSink) ProposalCreated(_ context.Context, ev ProposalCreatedEvent) {
	r.created = append(r.created, ev)
}

func (r *recordingSink) VoteCast(_ context.Context, ev VoteCastEvent) {
	r.votes = append(r.votes, ev)
}

func (r *recordingSink) ProposalExecuted(_ context.Context, ev ProposalExecutedEvent) {
	r.executed = append(r.executed, ev)
}

type testEnv struct {
	engine    *Engine
	db        *gorm.DB
	clock     *fakeClock
	sink      *recordingSink
	transfers *recordingTransfers
	power     *StaticPowerSource
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	power := &StaticPowerSource{Powers: map[string]uint64{}}
	return newTestEnvWith(t, power, power)
}

func newTestEnvWith(t *testing.T, source PowerSource, static *StaticPowerSource) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, data.Migrate(db))

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	sink := &recordingSink{}
	transfers := &recordingTransfers{}

	engine, err := NewEngine(db, Options{
		Owner:    testOwner,
		Power:    source,
		Events:   sink,
		Transfer: transfers,
		Clock:    clock.Now,
		Defaults: types.GovernanceConfig{
			MinProposalDeposit: 10,
			VotingPeriod:       3600,
			ExecutionDelay:     600,
			QuorumThreshold:    1000,
			ApprovalThreshold:  5000,
			MaxActiveProposals: 5,
		},
	})
	require.NoError(t, err)

	return &testEnv{
		engine:    engine,
		db:        db,
		clock:     clock,
		sink:      sink,
		transfers: transfers,
		power:     static,
	}
}

// addMember registers a member row and its fixed power with the static source.
func (env *testEnv) addMember(t *testing.T, addr string, power uint64) {
	t.Helper()
	require.NoError(t, env.db.Create(&types.Member{
		Address:     addr,
		Roles:       encodeRoles([]string{RoleMember}),
		VotingPower: power,
	}).Error)
	if env.power != nil {
		env.power.Powers[addr] = power
		env.power.Total += power
	}
}

func (env *testEnv) fundTreasury(t *testing.T, voice, native uint64) {
	t.Helper()
	var treasury types.Treasury
	require.NoError(t, env.db.First(&treasury, 1).Error)
	treasury.VoiceBalance += voice
	treasury.NativeBalance += native
	require.NoError(t, env.db.Save(&treasury).Error)
}

func (env *testEnv) treasury(t *testing.T) types.Treasury {
	t.Helper()
	var treasury types.Treasury
	require.NoError(t, env.db.First(&treasury, 1).Error)
	return treasury
}

func (env *testEnv) proposal(t *testing.T, id uint64) types.Proposal {
	t.Helper()
	var p types.Proposal
	require.NoError(t, env.db.First(&p, id).Error)
	return p
}

func treasuryPayload(recipient string, amount uint64, token, purpose string) Payload {
	return Payload{Kind: PayloadTreasury, Treasury: &TreasurySpend{
		Recipient: recipient,
		Amount:    amount,
		Token:     token,
		Purpose:   purpose,
	}}
}

func contentPayload() Payload {
	return Payload{Kind: PayloadContent, Content: &ContentAction{
		Action:    "feature",
		ContentID: "voice-42",
	}}
}

func (env *testEnv) createProposal(t *testing.T, proposer string, payload Payload) uint64 {
	t.Helper()
	id, err := env.engine.CreateProposal(context.Background(), proposer, CreateProposalInput{
		Title:   "test proposal",
		Payload: payload,
		Deposit: 10,
	})
	require.NoError(t, err)
	return id
}

// queuedProposal drives a proposal through vote, finalize and queue so
// execution tests start from the Queued state.
func (env *testEnv) queuedProposal(t *testing.T, proposer, voter string, payload Payload) uint64 {
	t.Helper()
	ctx := context.Background()
	id := env.createProposal(t, proposer, payload)
	require.NoError(t, env.engine.VoteOnProposal(ctx, voter, id, types.VoteFor, ""))
	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))
	env.clock.Advance(600 * time.Second)
	require.NoError(t, env.engine.QueueProposal(ctx, id))
	return id
}

func TestNewEngineBootstrapsOwner(t *testing.T) {
	env := newTestEnv(t)

	var m types.Member
	require.NoError(t, env.db.First(&m, "address = ?", testOwner).Error)
	assert.Equal(t, []string{RoleFounder}, decodeRoles(m.Roles))

	council, err := env.engine.IsCouncilMember(testOwner)
	require.NoError(t, err)
	assert.True(t, council)

	cfg, err := env.engine.GetConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), cfg.VotingPeriod)
	assert.Equal(t, uint32(1000), cfg.QuorumThreshold)
}

func TestCreateProposalRequiresMembership(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.CreateProposal(context.Background(), "stranger", CreateProposalInput{
		Title:   "no",
		Payload: contentPayload(),
		Deposit: 10,
	})
	assert.ErrorIs(t, err, ErrNotAMember)
}

func TestCreateProposalDepositFloor(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)

	_, err := env.engine.CreateProposal(context.Background(), "alice", CreateProposalInput{
		Title:   "underfunded",
		Payload: contentPayload(),
		Deposit: 9,
	})
	assert.ErrorIs(t, err, ErrInsufficientDeposit)
}

func TestCreateProposalOpensVotingWindow(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)

	id := env.createProposal(t, "alice", contentPayload())

	p := env.proposal(t, id)
	now := uint64(env.clock.Now().Unix())
	assert.Equal(t, types.ProposalStatusActive, p.Status)
	assert.Equal(t, now, p.VotingStarts)
	assert.Equal(t, now+3600, p.VotingEnds)
	assert.Equal(t, uint64(10), p.Deposit)
	assert.Zero(t, p.ExecutionETA)

	require.Len(t, env.sink.created, 1)
	assert.Equal(t, id, env.sink.created[0].ProposalID)
	assert.Equal(t, PayloadContent, env.sink.created[0].Kind)
}

func TestCreateProposalActiveCap(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)
	require.NoError(t, env.db.Model(&types.GovernanceConfig{}).
		Where("id = ?", 1).Update("max_active_proposals", 2).Error)

	env.createProposal(t, "alice", contentPayload())
	env.createProposal(t, "alice", contentPayload())

	_, err := env.engine.CreateProposal(context.Background(), "alice", CreateProposalInput{
		Title:   "one too many",
		Payload: contentPayload(),
		Deposit: 10,
	})
	assert.ErrorIs(t, err, ErrTooManyActiveProposals)
}

func TestVoteTalliesMatchBuckets(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)
	env.addMember(t, "bob", 30)
	env.addMember(t, "carol", 30)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())

	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, "yes"))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "bob", id, types.VoteAgainst, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "carol", id, types.VoteAbstain, ""))

	p := env.proposal(t, id)
	assert.Equal(t, uint64(40), p.VotesFor)
	assert.Equal(t, uint64(30), p.VotesAgainst)
	assert.Equal(t, uint64(30), p.VotesAbstain)
	assert.Equal(t, p.VotesFor+p.VotesAgainst+p.VotesAbstain, p.TotalVotes)

	vote, err := env.engine.GetVote(id, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.VoteFor, vote.Support)
	assert.Equal(t, uint64(40), vote.Power)
	assert.Equal(t, "yes", vote.Reason)

	require.Len(t, env.sink.votes, 3)
}

func TestRevoteDoesNotDoubleCount(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())

	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteAgainst, "changed my mind"))

	p := env.proposal(t, id)
	assert.Zero(t, p.VotesFor)
	assert.Equal(t, uint64(100), p.VotesAgainst)
	assert.Equal(t, uint64(100), p.TotalVotes)

	var count int64
	require.NoError(t, env.db.Model(&types.Vote{}).Where("proposal_id = ?", id).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	vote, err := env.engine.GetVote(id, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.VoteAgainst, vote.Support)
	assert.Equal(t, "changed my mind", vote.Reason)
}

func TestVotePreconditions(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)
	env.addMember(t, "powerless", 0)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())

	assert.ErrorIs(t, env.engine.VoteOnProposal(ctx, "alice", id, "maybe", ""), ErrInvalidVote)
	assert.ErrorIs(t, env.engine.VoteOnProposal(ctx, "alice", 999, types.VoteFor, ""), ErrProposalNotFound)
	assert.ErrorIs(t, env.engine.VoteOnProposal(ctx, "stranger", id, types.VoteFor, ""), ErrNotAMember)
	assert.ErrorIs(t, env.engine.VoteOnProposal(ctx, "powerless", id, types.VoteFor, ""), ErrNoVotingPower)

	env.clock.Advance(3601 * time.Second)
	assert.ErrorIs(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""), ErrVotingClosed)
}

func TestFinalizeRejectsOpenVoting(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())

	assert.ErrorIs(t, env.engine.FinalizeProposal(ctx, id), ErrVotingPeriodNotEnded)

	// The boundary second still belongs to the voting window.
	env.clock.Advance(3600 * time.Second)
	assert.ErrorIs(t, env.engine.FinalizeProposal(ctx, id), ErrVotingPeriodNotEnded)
}

func TestFinalizeSuccessRefundsDeposit(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)
	env.addMember(t, "bob", 30)
	env.addMember(t, "carol", 30)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())
	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "bob", id, types.VoteAgainst, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "carol", id, types.VoteAbstain, ""))

	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))

	// 100% turnout clears the 10% quorum; approval is 40/(40+30) = 57%.
	p := env.proposal(t, id)
	assert.Equal(t, types.ProposalStatusSucceeded, p.Status)
	assert.Equal(t, uint64(env.clock.Now().Unix())+600, p.ExecutionETA)

	require.Len(t, env.transfers.sent, 1)
	assert.Equal(t, sentTransfer{"alice", 10, TransferDepositRefund, "proposal-1"}, env.transfers.sent[0])
}

func TestFinalizeExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())
	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))

	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))
	assert.ErrorIs(t, env.engine.FinalizeProposal(ctx, id), ErrProposalNotActive)
	require.Len(t, env.transfers.sent, 1)
}

func TestFinalizeQuorumFailureForfeitsDeposit(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "minnow", 5)
	env.power.Total = 1000

	ctx := context.Background()
	id := env.createProposal(t, "minnow", contentPayload())
	require.NoError(t, env.engine.VoteOnProposal(ctx, "minnow", id, types.VoteFor, ""))

	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))

	// Unanimous approval cannot save a proposal that missed quorum.
	p := env.proposal(t, id)
	assert.Equal(t, types.ProposalStatusDefeated, p.Status)
	assert.Zero(t, p.ExecutionETA)
	assert.Empty(t, env.transfers.sent)
	assert.Equal(t, uint64(10), env.treasury(t).NativeBalance)
}

func TestFinalizeApprovalFailure(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 30)
	env.addMember(t, "bob", 40)
	env.addMember(t, "carol", 30)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())
	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "bob", id, types.VoteAgainst, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "carol", id, types.VoteAbstain, ""))

	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))

	// Quorum is met but approval is 30/(30+40) = 42%, under the 50% bar.
	assert.Equal(t, types.ProposalStatusDefeated, env.proposal(t, id).Status)
}

func TestAbstainCountsTowardQuorumNotApproval(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 50)
	env.addMember(t, "bob", 60)
	env.power.Total = 1000

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())
	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))
	require.NoError(t, env.engine.VoteOnProposal(ctx, "bob", id, types.VoteAbstain, ""))

	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))

	// 110 of 1000 cast clears quorum; abstentions drop out of approval, so
	// for wins at 100%.
	assert.Equal(t, types.ProposalStatusSucceeded, env.proposal(t, id).Status)
}

func TestQueueRequiresSucceededAndElapsedDelay(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 100)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())
	assert.ErrorIs(t, env.engine.QueueProposal(ctx, id), ErrProposalNotSucceeded)

	require.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))
	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.engine.FinalizeProposal(ctx, id))

	assert.ErrorIs(t, env.engine.QueueProposal(ctx, id), ErrExecutionDelayNotMet)

	env.clock.Advance(600 * time.Second)
	require.NoError(t, env.engine.QueueProposal(ctx, id))
	assert.Equal(t, types.ProposalStatusQueued, env.proposal(t, id).Status)

	assert.ErrorIs(t, env.engine.QueueProposal(ctx, id), ErrProposalNotSucceeded)
}

func TestPauseBlocksMutations(t *testing.T) {
	env := newTestEnv(t)
	env.addMember(t, "alice", 40)

	ctx := context.Background()
	id := env.createProposal(t, "alice", contentPayload())

	require.NoError(t, env.engine.Pause(ctx, testOwner))

	_, err := env.engine.CreateProposal(ctx, "alice", CreateProposalInput{
		Title:   "while paused",
		Payload: contentPayload(),
		Deposit: 10,
	})
	assert.ErrorIs(t, err, ErrEnginePaused)
	assert.ErrorIs(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""), ErrEnginePaused)

	require.NoError(t, env.engine.Unpause(ctx, testOwner))
	assert.NoError(t, env.engine.VoteOnProposal(ctx, "alice", id, types.VoteFor, ""))
}
