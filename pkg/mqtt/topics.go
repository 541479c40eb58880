package mqtt

import (
	"fmt"
	"strings"
)

// Topic patterns used by the natural light agent
const (
	// Colour commands for the fixture driver (output)
	TopicCommandBase = "automation/command/light"
	// Lighting context for other agents (output)
	TopicContextBase = "automation/context/lighting"
	// Manual overrides from switches or dashboards (input)
	TopicOverrideBase = "automation/override/light"
	// Retained availability of the agent (output, last will)
	TopicStatusBase = "automation/status/natlight"
)

// CommandTopic returns the colour command topic for a location
// Pattern: automation/command/light/{location}
func CommandTopic(location string) string {
	return fmt.Sprintf("%s/%s", TopicCommandBase, location)
}

// ContextTopic returns the lighting context topic for a location
// Pattern: automation/context/lighting/{location}
func ContextTopic(location string) string {
	return fmt.Sprintf("%s/%s", TopicContextBase, location)
}

// OverrideTopic returns the manual override topic for a location
// Pattern: automation/override/light/{location}
func OverrideTopic(location string) string {
	return fmt.Sprintf("%s/%s", TopicOverrideBase, location)
}

// StatusTopic returns the availability topic for a location
// Pattern: automation/status/natlight/{location}
func StatusTopic(location string) string {
	return fmt.Sprintf("%s/%s", TopicStatusBase, location)
}

// LocationFromTopic extracts the trailing location segment of a topic below base
func LocationFromTopic(base, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, base+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
