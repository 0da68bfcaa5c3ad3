// Package issuance drives the cross-chain token issuance workflow: create a
// token on the main chain, prove it exists, replay the proof on the side chain
// and issue the supply there.
package issuance

import (
	"github.com/chainsafe/crosschain-issuer/pkg/token"
)

// Stage is one step of the workflow. Stages run strictly in declaration order.
type Stage string

const (
	StageMainChainCreate Stage = "MainChainCreate"
	StageValidate        Stage = "Validate"
	StageAwaitParentSync Stage = "AwaitParentSync"
	StageFetchProof      Stage = "FetchProof"
	StageSideChainCreate Stage = "SideChainCreate"
	StageSideChainIssue  Stage = "SideChainIssue"
)

var stageOrder = []Stage{
	StageMainChainCreate,
	StageValidate,
	StageAwaitParentSync,
	StageFetchProof,
	StageSideChainCreate,
	StageSideChainIssue,
}

// Stages returns the stages a run in mode executes, in order.
func Stages(mode Mode) []Stage {
	if mode == token.ModeCreateToken {
		return append([]Stage(nil), stageOrder...)
	}
	return append([]Stage(nil), stageOrder[:len(stageOrder)-1]...)
}

// Index returns the position of s in the workflow, or -1.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Mode selects the workflow variant.
type Mode = token.Mode

const (
	ModeCreateCollection = token.ModeCreateCollection
	ModeCreateToken      = token.ModeCreateToken
)

// Request is one issuance run.
type Request struct {
	ID         string // optional; generated when empty
	Definition token.Definition
	Mode       Mode
	Memo       string // issue memo, token mode only

	// Resume treats a duplicate-symbol rejection at MainChainCreate or
	// SideChainCreate as that stage already being complete, so a run that
	// failed part-way can be re-run with the same definition.
	Resume bool
}

// Outcome summarizes a run. On failure it still reports how far the run got.
type Outcome struct {
	RunID              string
	FinalTransactionID string
	StageReached       Stage // last stage that completed
	Transactions       map[Stage]string
}
