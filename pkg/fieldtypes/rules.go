package fieldtypes

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ruleEngine compiles attribute rules once and caches the programs by kind and source.
type ruleEngine struct {
	programCache map[string]*vm.Program
	mu           sync.RWMutex
}

func newRuleEngine() *ruleEngine {
	return &ruleEngine{programCache: make(map[string]*vm.Program)}
}

// Check evaluates rule against value and reports whether it holds.
func (e *ruleEngine) Check(kind AttributeKind, rule string, value any) (bool, error) {
	env := map[string]any{"value": value}
	program, err := e.getProgram(kind, rule, env)
	if err != nil {
		return false, err
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("rule %q did not evaluate to a boolean", rule)
	}
	return ok, nil
}

func (e *ruleEngine) getProgram(kind AttributeKind, rule string, env map[string]any) (*vm.Program, error) {
	key := string(kind) + "|" + rule

	e.mu.RLock()
	if prog, ok := e.programCache[key]; ok {
		e.mu.RUnlock()
		return prog, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if prog, ok := e.programCache[key]; ok {
		return prog, nil
	}
	prog, err := expr.Compile(rule, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile rule %q: %w", rule, err)
	}
	e.programCache[key] = prog
	return prog, nil
}
