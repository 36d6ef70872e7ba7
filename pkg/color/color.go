package color

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/fatih/color"
)

// Predefined color palette for agents
var agentColors = []color.Attribute{
	color.FgHiRed,
	color.FgHiGreen,
	color.FgHiYellow,
	color.FgHiBlue,
	color.FgHiMagenta,
	color.FgHiCyan,
	color.FgRed,
	color.FgGreen,
	color.FgYellow,
	color.FgBlue,
	color.FgMagenta,
	color.FgCyan,
}

// Painter renders agent prefixes. Colour is decided once at construction so output stays stable for a whole run.
type Painter struct {
	enabled bool
}

// NewPainter returns a Painter. When enabled is false every method returns plain text.
// fatih/color's NO_COLOR and terminal detection is applied on top via color.NoColor.
func NewPainter(enabled bool) *Painter {
	return &Painter{enabled: enabled && !color.NoColor}
}

// AgentAttribute returns a consistent colour for the given agent ID.
func AgentAttribute(agentID string) color.Attribute {
	h := fnv.New32a()
	_, _ = h.Write([]byte(agentID))
	return agentColors[h.Sum32()%uint32(len(agentColors))]
}

func (p *Painter) paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if p.enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

// AgentPrefix formats "[ID]" in the agent's colour.
func (p *Painter) AgentPrefix(agentID string) string {
	return p.paint(fmt.Sprintf("[%s]", agentID), AgentAttribute(agentID))
}

// Action colours lifecycle actions: failures red, completions green, starts yellow.
func (p *Painter) Action(action string) string {
	switch {
	case action == "task_failed" || action == "issue_found":
		return p.paint(action, color.FgRed, color.Bold)
	case action == "task_complete":
		return p.paint(action, color.FgGreen)
	case action == "task_started" || action == "task_assigned":
		return p.paint(action, color.FgYellow)
	case strings.HasPrefix(action, "message_to_"):
		return p.paint(action, color.FgCyan)
	default:
		return p.paint(action, color.Faint)
	}
}

// Dim renders secondary text such as timestamps.
func (p *Painter) Dim(text string) string {
	return p.paint(text, color.Faint)
}
