package llm

import (
	"fmt"
	"strings"
)

// buildPrompt assembles the decision prompt: rules preamble, the need→fix
// table, one status line per living agent, and the expected reply shape.
func buildPrompt(agentLines []string, ids []string) string {
	var b strings.Builder

	b.WriteString(`You control agents. Each has 4 needs: hunger, energy, social, work.
If ANY need drops below 2.5, agent LOSES HEALTH and will DIE.

HOW TO FIX EACH NEED:
- hunger < 4 → go_cafe (cafe restores hunger)
- energy < 4 → go_home (home restores energy)
- social < 4 → go_park (park restores social)
- work < 4 → go_work (office restores work)

CRITICAL RULE: If status=DYING, agent MUST go to the zone shown in "fix=" field!

AGENTS NOW:
`)
	b.WriteString(strings.Join(agentLines, "\n"))

	b.WriteString("\n\nAVAILABLE GOALS: idle, go_home, go_cafe, go_park, go_work\n\nReply ONLY JSON:\n")

	shape := make([]string, 0, len(ids))
	for _, id := range ids {
		shape = append(shape, fmt.Sprintf("%q:{\"goal\":\"...\"}", id))
	}
	b.WriteString("{" + strings.Join(shape, ",") + "}")

	return b.String()
}
