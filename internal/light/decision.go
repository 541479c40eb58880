package light

import (
	"log/slog"
)

// Decision says whether a computed colour should be published and why
type Decision struct {
	Action string // "publish" or "maintain"
	Reason string // Concise reason for the decision
}

const (
	ActionPublish  = "publish"
	ActionMaintain = "maintain"
)

// MakePublishDecision implements the publish rules (Rules 0-3).
// last is the most recently published output, nil before the first publish.
func MakePublishDecision(
	location string,
	current *Output,
	last *Output,
	overrideActive bool,
	forced bool,
	logger *slog.Logger,
) *Decision {
	// Rule 0: Manual Override - leave the fixture alone, even when forced
	if overrideActive {
		logger.Debug("Rule 0: Manual override active",
			"location", location,
			"action", ActionMaintain)
		return &Decision{Action: ActionMaintain, Reason: "manual_override_active"}
	}

	// Rule 1: Forced - override cleared or configuration reloaded
	if forced {
		logger.Debug("Rule 1: Forced publish", "location", location)
		return &Decision{Action: ActionPublish, Reason: "forced"}
	}

	// Rule 2: Nothing published yet, or the fixture was under manual control
	if last == nil {
		logger.Debug("Rule 2: First colour for location", "location", location)
		return &Decision{Action: ActionPublish, Reason: "initial"}
	}

	// Rule 3: Same 8-bit colour and phase as last time
	if current.Hex() == last.Hex() && current.Phase == last.Phase {
		logger.Debug("Rule 3: Colour unchanged",
			"location", location,
			"hex", current.Hex())
		return &Decision{Action: ActionMaintain, Reason: "unchanged"}
	}

	return &Decision{Action: ActionPublish, Reason: "colour_changed"}
}
