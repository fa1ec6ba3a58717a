package models

// Stage identifies a step of the isolated build state machine.
//
// Stages run strictly in declaration order. Any failure from StageCreate on
// jumps to StageCleanup before the run ends.
type Stage string

const (
	StageInit          Stage = "init"
	StageCheckRuntime  Stage = "check-runtime"
	StageCreate        Stage = "stage"
	StageMirror        Stage = "mirror"
	StageVerifyEntry   Stage = "verify-entry"
	StageProvisionDeps Stage = "provision-deps"
	StageInvoke        Stage = "invoke"
	StageMaterialize   Stage = "materialize"
	StageCleanup       Stage = "cleanup"
	StageDone          Stage = "done"
)

// String returns the string representation of Stage
func (s Stage) String() string {
	return string(s)
}

// Outcome is the binary result of a run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)
