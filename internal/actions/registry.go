// Package actions holds the named, parameter-checked operations an agent
// can invoke.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"sort"
	"strings"
	"sync"

	clierr "github.com/ggonzalez94/evm-agent/internal/errors"
	"github.com/ggonzalez94/evm-agent/internal/model"
	"github.com/ggonzalez94/evm-agent/internal/policy"
)

type ParamType string

const (
	TypeString ParamType = "string"
	TypeNumber ParamType = "number"
)

type Parameter struct {
	Name     string
	Required bool
	Type     ParamType
	Help     string
}

// Handler receives exactly the kwargs the caller supplied.
type Handler func(ctx context.Context, kwargs map[string]any) (any, error)

type Action struct {
	Name        string
	Description string
	Parameters  []Parameter
	Handler     Handler
}

// Registry maps action names to actions. Lookup is case-sensitive.
type Registry struct {
	mu        sync.RWMutex
	actions   map[string]Action
	order     []string
	allowlist []string
}

func NewRegistry() *Registry {
	return &Registry{actions: map[string]Action{}}
}

// Register stores action, replacing any earlier action of the same name.
func (r *Registry) Register(action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.actions[action.Name]; !exists {
		r.order = append(r.order, action.Name)
	}
	r.actions[action.Name] = action
}

// SetAllowlist restricts Dispatch to the named actions. Empty allows all.
func (r *Registry) SetAllowlist(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allowlist = append([]string(nil), names...)
}

func (r *Registry) Lookup(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, ok := r.actions[name]
	return action, ok
}

// Validate checks name and kwargs against the registered contract. The
// action must exist and pass the allowlist before any parameter is looked
// at. Every offending parameter is reported in one InvalidParameters error.
func (r *Registry) Validate(name string, kwargs map[string]any) (Action, error) {
	action, ok := r.Lookup(name)
	if !ok {
		return Action{}, clierr.New(clierr.CodeUnknownAction, fmt.Sprintf("unknown action: %s", name))
	}
	r.mu.RLock()
	allowlist := r.allowlist
	r.mu.RUnlock()
	if err := policy.CheckActionAllowed(allowlist, name); err != nil {
		return Action{}, err
	}

	var problems []string
	declared := make(map[string]struct{}, len(action.Parameters))
	for _, param := range action.Parameters {
		declared[param.Name] = struct{}{}
		v, present := kwargs[param.Name]
		if !present || v == nil {
			if param.Required {
				problems = append(problems, "missing required parameter: "+param.Name)
			}
			continue
		}
		if !matchesType(param.Type, v) {
			problems = append(problems, fmt.Sprintf("invalid type for %s: expected %s, got %s", param.Name, param.Type, describe(v)))
		}
	}
	var extra []string
	for key := range kwargs {
		if _, ok := declared[key]; !ok {
			extra = append(extra, "unknown parameter: "+key)
		}
	}
	sort.Strings(extra)
	problems = append(problems, extra...)

	if len(problems) > 0 {
		return Action{}, clierr.New(clierr.CodeInvalidParameters, "Invalid parameters: "+strings.Join(problems, ", "))
	}
	return action, nil
}

// Dispatch validates and then runs the action's handler. Nothing runs when
// validation fails.
func (r *Registry) Dispatch(ctx context.Context, name string, kwargs map[string]any) (any, error) {
	action, err := r.Validate(name, kwargs)
	if err != nil {
		return nil, err
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return action.Handler(ctx, kwargs)
}

var numberPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Bind maps positional CLI values onto the action's parameters in
// declaration order. Values that do not look like numbers stay strings so
// that Validate reports the mismatch. Extra values are ignored.
func (r *Registry) Bind(name string, positional []string) (map[string]any, error) {
	action, ok := r.Lookup(name)
	if !ok {
		return nil, clierr.New(clierr.CodeUnknownAction, fmt.Sprintf("unknown action: %s", name))
	}
	kwargs := map[string]any{}
	for i, value := range positional {
		if i >= len(action.Parameters) {
			break
		}
		param := action.Parameters[i]
		clean := strings.TrimSpace(value)
		if param.Type == TypeNumber && numberPattern.MatchString(clean) {
			kwargs[param.Name] = json.Number(clean)
			continue
		}
		kwargs[param.Name] = value
	}
	return kwargs, nil
}

// List returns the registered actions in registration order.
func (r *Registry) List() []model.ActionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ActionInfo, 0, len(r.order))
	for _, name := range r.order {
		action := r.actions[name]
		params := make([]model.ParamInfo, 0, len(action.Parameters))
		for _, p := range action.Parameters {
			params = append(params, model.ParamInfo{Name: p.Name, Type: string(p.Type), Required: p.Required, Help: p.Help})
		}
		out = append(out, model.ActionInfo{Name: action.Name, Description: action.Description, Parameters: params})
	}
	return out
}

// DecodeKwargs parses a JSON object of parameters, keeping numbers exact.
func DecodeKwargs(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var kwargs map[string]any
	if err := dec.Decode(&kwargs); err != nil {
		return nil, clierr.Wrap(clierr.CodeUsage, "--params must be a JSON object", err)
	}
	if kwargs == nil {
		kwargs = map[string]any{}
	}
	return kwargs, nil
}

func matchesType(t ParamType, v any) bool {
	switch t {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		return isNumber(v)
	default:
		return true
	}
}

func isNumber(v any) bool {
	switch t := v.(type) {
	case json.Number:
		return numberPattern.MatchString(t.String())
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case *big.Rat:
		return t != nil
	default:
		return false
	}
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	if isNumber(v) {
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
