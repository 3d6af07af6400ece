package protocol

import "errors"

// Result codes surfaced to tool callers. Background behaviors never
// surface these; they degrade to warning events instead.
const (
	// Task guard contention.
	CodeAlreadyRunning = "E_ALREADY_RUNNING"

	// Watchdog outcomes. Distinct so callers can tell "unreachable"
	// from "legitimately slow".
	CodeTimeout = "E_TIMEOUT"
	CodeStalled = "E_STALLED"

	// Precondition failures, remediable by the caller.
	CodeNoResource        = "E_NO_RESOURCE"
	CodeNoCraftingSurface = "E_NO_CRAFTING_SURFACE"
	CodeNoTool            = "E_NO_TOOL"
	CodeNoFuel            = "E_NO_FUEL"

	// Mid-operation exhaustion after bounded refuel attempts.
	CodeOutOfFuel = "E_OUT_OF_FUEL"

	// World-state preconditions.
	CodeTargetNotFound = "E_TARGET_NOT_FOUND"
	CodeTargetLost     = "E_TARGET_LOST"

	// Session/transport.
	CodeNotConnected = "E_NOT_CONNECTED"
	CodeCancelled    = "E_CANCELLED"
	CodeBadRequest   = "E_BAD_REQUEST"
	CodeInternal     = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	CodeAlreadyRunning:    {},
	CodeTimeout:           {},
	CodeStalled:           {},
	CodeNoResource:        {},
	CodeNoCraftingSurface: {},
	CodeNoTool:            {},
	CodeNoFuel:            {},
	CodeOutOfFuel:         {},
	CodeTargetNotFound:    {},
	CodeTargetLost:        {},
	CodeNotConnected:      {},
	CodeCancelled:         {},
	CodeBadRequest:        {},
	CodeInternal:          {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}

// Sentinels for the conditions that cross package boundaries.
var (
	ErrAlreadyRunning = errors.New("a task is already running for this agent")
	ErrNotConnected   = errors.New("agent is not connected")
	ErrTargetNotFound = errors.New("target not found")
	ErrTargetLost     = errors.New("target lost")
)
