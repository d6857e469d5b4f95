package wizard

import (
	"errors"
	"fmt"

	"github.com/nexuscrm/fieldstudio/pkg/fieldtypes"
)

// Step is one screen of the wizard.
type Step string

const (
	StepFieldType       Step = "fieldType"
	StepSubtype         Step = "subtype"
	StepLookupObject    Step = "lookupObject"
	StepSourceSelection Step = "sourceSelection"
	StepForm            Step = "form"
)

// Action moves between steps.
type Action string

const (
	ActionNext Action = "Next"
	ActionBack Action = "Back"
)

// route is the path a field type takes from fieldType to form.
type route string

const (
	routeDirect  route = "direct"
	routeSubtype route = "subtype"
	routeSource  route = "source"
	routeLookup  route = "lookup"
)

// ErrComingSoon marks field types that are offered but not implemented.
var ErrComingSoon = errors.New("coming soon")

func routeFor(t fieldtypes.FieldType) (route, error) {
	switch t {
	case fieldtypes.TypeText, fieldtypes.TypeDateTime:
		return routeSubtype, nil
	case fieldtypes.TypeDropDownList:
		return routeSource, nil
	case fieldtypes.TypeLookup:
		return routeLookup, nil
	case fieldtypes.TypeNumber, fieldtypes.TypeCheckbox, fieldtypes.TypeAddress:
		return routeDirect, nil
	case fieldtypes.TypeFormula, fieldtypes.TypeAmount:
		return "", fmt.Errorf("%s is %w", t, ErrComingSoon)
	default:
		return "", fmt.Errorf("%w: %q", fieldtypes.ErrUnsupportedFieldType, t)
	}
}

// stepMachine holds the step transitions for each route.
//
//	              ┌── subtype ──────────┐
//	[fieldType] ──┼── sourceSelection ──┼──► [form]
//	              ├── lookupObject ─────┤
//	              └─────────────────────┘ (Number, Checkbox, Address)
//
// Back mirrors every Next edge.
type stepMachine struct {
	transitions map[transitionKey]Step
}

type transitionKey struct {
	step   Step
	action Action
	route  route
}

func newStepMachine() *stepMachine {
	sm := &stepMachine{transitions: make(map[transitionKey]Step)}

	sm.addEdge(StepFieldType, StepForm, routeDirect)
	for r, gate := range map[route]Step{
		routeSubtype: StepSubtype,
		routeSource:  StepSourceSelection,
		routeLookup:  StepLookupObject,
	} {
		sm.addEdge(StepFieldType, gate, r)
		sm.addEdge(gate, StepForm, r)
	}
	return sm
}

// addEdge registers Next from -> to and the mirrored Back.
func (sm *stepMachine) addEdge(from, to Step, r route) {
	sm.transitions[transitionKey{step: from, action: ActionNext, route: r}] = to
	sm.transitions[transitionKey{step: to, action: ActionBack, route: r}] = from
}

// Transition returns the step reached from current via action on route r.
func (sm *stepMachine) Transition(current Step, action Action, r route) (Step, error) {
	next, ok := sm.transitions[transitionKey{step: current, action: action, route: r}]
	if !ok {
		return current, fmt.Errorf("invalid step transition: cannot %s from %s", action, current)
	}
	return next, nil
}

// CanTransition checks a transition without performing it.
func (sm *stepMachine) CanTransition(current Step, action Action, r route) bool {
	_, ok := sm.transitions[transitionKey{step: current, action: action, route: r}]
	return ok
}
