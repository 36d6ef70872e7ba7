package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentAttribute_Stable(t *testing.T) {
	assert.Equal(t, AgentAttribute("JC"), AgentAttribute("JC"))
	assert.Contains(t, agentColors, AgentAttribute("DC"))
}

func TestPainter_Disabled(t *testing.T) {
	p := NewPainter(false)
	assert.Equal(t, "[JC]", p.AgentPrefix("JC"))
	assert.Equal(t, "task_failed", p.Action("task_failed"))
	assert.Equal(t, "2026-01-01", p.Dim("2026-01-01"))
}

func TestPainter_Enabled(t *testing.T) {
	p := &Painter{enabled: true}
	assert.Contains(t, p.Action("task_failed"), "\x1b[31;1m")
	assert.Contains(t, p.Action("task_complete"), "\x1b[32m")
	assert.Contains(t, p.Action("message_to_jc"), "\x1b[36m")
	assert.Contains(t, p.AgentPrefix("JC"), "[JC]")
}
