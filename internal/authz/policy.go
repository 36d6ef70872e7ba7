package authz

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/agentfeed/internal/feed"
)

// Policy is the static allow-list of identities that may assign tasks.
// Identities are compared by exact string equality.
type Policy struct {
	ids map[string]string // identity -> assigner name
}

func New(ids ...string) *Policy {
	p := &Policy{ids: make(map[string]string, len(ids))}
	for _, id := range ids {
		p.add(id, id)
	}
	return p
}

func (p *Policy) add(name, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	p.ids[id] = name
}

// Assigner resolves who assigned the entry: the writing agent first, then details.assigned_by.
// It returns the matched identity and the assigner name it belongs to.
func (p *Policy) Assigner(entry *feed.Entry) (id, name string, ok bool) {
	if entry == nil {
		return "", "", false
	}
	if name, ok := p.ids[entry.Agent]; ok {
		return entry.Agent, name, true
	}
	if by := entry.Detail("assigned_by"); by != "" {
		if name, ok := p.ids[by]; ok {
			return by, name, true
		}
	}
	return "", "", false
}

func (p *Policy) IsAuthorized(entry *feed.Entry) bool {
	_, _, ok := p.Assigner(entry)
	return ok
}

// Identities returns the accepted identities, sorted.
func (p *Policy) Identities() []string {
	out := make([]string, 0, len(p.ids))
	for id := range p.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

type fileFormat struct {
	Assigners []struct {
		Name string   `yaml:"name"`
		IDs  []string `yaml:"ids"`
	} `yaml:"assigners"`
}

// LoadFile merges a YAML allow-list into p. Each assigner lists every identity it may appear under:
//
//	assigners:
//	  - name: Stryk
//	    ids: ["Stryk#8167", "1390653822535340162", lordcain]
func (p *Policy) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read authorization file: %w", err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse authorization file %s: %w", path, err)
	}
	for _, a := range f.Assigners {
		if a.Name == "" {
			return fmt.Errorf("authorization file %s: assigner without name", path)
		}
		p.add(a.Name, a.Name)
		for _, id := range a.IDs {
			p.add(a.Name, id)
		}
	}
	return nil
}
