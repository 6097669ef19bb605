package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go-elms/internal/config"
	"go-elms/internal/features/letter"
	"go-elms/pkg/condition"
)

const DefaultChainName = "default"

// DefaultChains is used when no chain file is configured.
func DefaultChains() []ApprovalChain {
	return []ApprovalChain{
		{
			Name:        DefaultChainName,
			Description: "Department head, then director",
			Steps: []ChainStep{
				{Level: 1, ApproverName: "Department Head", ApproverEmail: "head@example.uz", ApproverRole: "Department Head"},
				{Level: 2, ApproverName: "Nodira Rahimova", ApproverEmail: "nodira.r@example.uz", ApproverRole: "Director"},
			},
		},
	}
}

// ChainRegistry holds the configured approval chains and selects one per letter.
type ChainRegistry struct {
	chains   []ApprovalChain
	byName   map[string]ApprovalChain
	router   *ScriptRouter
	compiler *condition.Compiler
}

func NewChainRegistry(chains []ApprovalChain, router *ScriptRouter) (*ChainRegistry, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("approval chains: at least one chain is required")
	}
	r := &ChainRegistry{
		byName:   make(map[string]ApprovalChain, len(chains)),
		router:   router,
		compiler: condition.NewCompiler(),
	}
	hasDefault := false
	for _, ch := range chains {
		if err := validateChain(ch); err != nil {
			return nil, err
		}
		if _, dup := r.byName[ch.Name]; dup {
			return nil, fmt.Errorf("approval chains: duplicate chain %q", ch.Name)
		}
		r.byName[ch.Name] = ch
		r.chains = append(r.chains, ch)
		if ch.Criteria.IsEmpty() {
			hasDefault = true
		}
	}
	if !hasDefault {
		return nil, fmt.Errorf("approval chains: one chain without criteria is required as fallback")
	}
	sort.SliceStable(r.chains, func(i, j int) bool { return r.chains[i].Priority > r.chains[j].Priority })
	return r, nil
}

func validateChain(ch ApprovalChain) error {
	if strings.TrimSpace(ch.Name) == "" {
		return fmt.Errorf("approval chains: chain name is required")
	}
	if len(ch.Steps) == 0 {
		return fmt.Errorf("approval chains: chain %q has no steps", ch.Name)
	}
	prev := 0
	for _, s := range ch.Steps {
		if s.Level <= prev {
			return fmt.Errorf("approval chains: chain %q levels must ascend from 1", ch.Name)
		}
		if s.ApproverName == "" {
			return fmt.Errorf("approval chains: chain %q level %d has no approver", ch.Name, s.Level)
		}
		prev = s.Level
	}
	return nil
}

// LoadChainRegistry reads APPROVAL_CHAIN_FILE (JSON array of chains) and
// ROUTING_SCRIPT, falling back to DefaultChains.
func LoadChainRegistry(cfg *config.Config) (*ChainRegistry, error) {
	chains := DefaultChains()
	if cfg.ApprovalChainFile != "" {
		data, err := os.ReadFile(cfg.ApprovalChainFile)
		if err != nil {
			return nil, fmt.Errorf("read approval chains: %w", err)
		}
		chains = nil
		if err := json.Unmarshal(data, &chains); err != nil {
			return nil, fmt.Errorf("parse approval chains: %w", err)
		}
	}

	var router *ScriptRouter
	if cfg.RoutingScript != "" {
		src, err := os.ReadFile(cfg.RoutingScript)
		if err != nil {
			return nil, fmt.Errorf("read routing script: %w", err)
		}
		router, err = NewScriptRouter(string(src))
		if err != nil {
			return nil, err
		}
	}
	return NewChainRegistry(chains, router)
}

func (r *ChainRegistry) Chains() []ApprovalChain {
	return append([]ApprovalChain(nil), r.chains...)
}

func (r *ChainRegistry) Get(name string) (ApprovalChain, bool) {
	ch, ok := r.byName[name]
	return ch, ok
}

func letterFields(l *letter.Letter) map[string]interface{} {
	return map[string]interface{}{
		"department":   l.Department,
		"priority":     string(l.Priority),
		"confidential": l.IsConfidential,
		"tags":         l.Tags,
		"template_id":  l.TemplateID,
		"subject":      l.Subject,
	}
}

// Select picks the chain for a letter: the routing script wins when it names
// a known chain, otherwise the first chain whose criteria match.
func (r *ChainRegistry) Select(ctx context.Context, l *letter.Letter) (ApprovalChain, error) {
	if r.router != nil {
		name, err := r.router.Route(ctx, l)
		if err != nil {
			return ApprovalChain{}, err
		}
		if name != "" {
			ch, ok := r.byName[name]
			if !ok {
				return ApprovalChain{}, fmt.Errorf("routing script selected unknown chain %q", name)
			}
			return ch, nil
		}
	}

	fields := letterFields(l)
	for _, ch := range r.chains {
		ok, err := r.compiler.Evaluate(ch.Criteria, fields)
		if err != nil {
			return ApprovalChain{}, fmt.Errorf("chain %q criteria: %w", ch.Name, err)
		}
		if ok {
			return ch, nil
		}
	}
	return ApprovalChain{}, fmt.Errorf("no approval chain matches letter %s", l.ID)
}
