package gov

import (
	"encoding/json"
	"fmt"
)

// Proposal payload kinds. The union is closed: every kind maps to exactly one
// variant struct below, and the executor dispatches on the kind.
const (
	PayloadTreasury     = "treasury"
	PayloadGovernance   = "governance"
	PayloadMembership   = "membership"
	PayloadContent      = "content"
	PayloadContractCall = "contract_call"
	PayloadPartnership  = "partnership"
	PayloadGrant        = "grant"
)

// Fund kinds held by the treasury.
const (
	FundVoice  = "voice"
	FundNative = "native"
)

// TreasurySpend moves funds of one kind to an external recipient.
type TreasurySpend struct {
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	Token     string `json:"token"`
	Purpose   string `json:"purpose"`
}

// GovernanceChange updates one named process parameter.
type GovernanceChange struct {
	Parameter string `json:"parameter"`
	NewValue  string `json:"newValue"`
}

// MembershipChange adds or removes a member.
type MembershipChange struct {
	Action string `json:"action"` // "add" or "remove"
	Member string `json:"member"`
	Role   string `json:"role"`
}

// ContentAction flags platform content for moderation or rewards.
type ContentAction struct {
	Action    string `json:"action"`
	ContentID string `json:"contentId"`
	Details   string `json:"details"`
}

// ContractCall requests an upgrade or admin call on an external contract.
// Declared for the proposal surface; execution is not supported.
type ContractCall struct {
	Action string `json:"action"`
	Target string `json:"target"`
	Method string `json:"method"`
	Args   string `json:"args"`
}

// Partnership records partnership terms. Execution is not supported.
type Partnership struct {
	Partner  string `json:"partner"`
	Terms    string `json:"terms"`
	Duration uint64 `json:"duration"`
}

// Grant disburses voice funds to a recipient. Milestones are recorded but the
// full amount is paid out at execution.
type Grant struct {
	Recipient  string   `json:"recipient"`
	Amount     uint64   `json:"amount"`
	Milestones []string `json:"milestones"`
	Category   string   `json:"category"`
}

// Payload is the tagged union stored on a proposal. Exactly one variant must
// be set and it must match Kind.
type Payload struct {
	Kind         string            `json:"kind"`
	Treasury     *TreasurySpend    `json:"treasury,omitempty"`
	Governance   *GovernanceChange `json:"governance,omitempty"`
	Membership   *MembershipChange `json:"membership,omitempty"`
	Content      *ContentAction    `json:"content,omitempty"`
	ContractCall *ContractCall     `json:"contractCall,omitempty"`
	Partnership  *Partnership      `json:"partnership,omitempty"`
	Grant        *Grant            `json:"grant,omitempty"`
}

func (p Payload) variants() []bool {
	return []bool{
		p.Treasury != nil,
		p.Governance != nil,
		p.Membership != nil,
		p.Content != nil,
		p.ContractCall != nil,
		p.Partnership != nil,
		p.Grant != nil,
	}
}

// Validate checks that exactly one variant is populated and agrees with Kind.
func (p Payload) Validate() error {
	set := 0
	for _, v := range p.variants() {
		if v {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: expected exactly one variant, got %d", ErrInvalidPayload, set)
	}
	ok := false
	switch p.Kind {
	case PayloadTreasury:
		ok = p.Treasury != nil
		if ok && p.Treasury.Token != FundVoice && p.Treasury.Token != FundNative {
			return fmt.Errorf("%w: unknown fund kind %q", ErrInvalidPayload, p.Treasury.Token)
		}
	case PayloadGovernance:
		ok = p.Governance != nil
	case PayloadMembership:
		ok = p.Membership != nil
	case PayloadContent:
		ok = p.Content != nil
	case PayloadContractCall:
		ok = p.ContractCall != nil
	case PayloadPartnership:
		ok = p.Partnership != nil
	case PayloadGrant:
		ok = p.Grant != nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPayload, p.Kind)
	}
	if !ok {
		return fmt.Errorf("%w: variant does not match kind %q", ErrInvalidPayload, p.Kind)
	}
	return nil
}

// EncodePayload serializes a validated payload for the proposal row.
func EncodePayload(p Payload) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodePayload parses a stored payload column.
func DecodePayload(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.Validate(); err != nil {
		return Payload{}, err
	}
	return p, nil
}
