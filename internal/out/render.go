package out

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/ggonzalez94/evm-agent/internal/config"
	"github.com/ggonzalez94/evm-agent/internal/model"
)

// Liner is implemented by results that have a compact one-line plain form.
type Liner interface {
	PlainLine() string
}

// Render writes env to w in the configured output mode.
//
// JSON mode writes the envelope, or only its data with --results-only.
// Plain mode is meant for agents reading a terminal: a status line, one line
// per result and one per warning. With --results-only only the result lines
// are written, and an action's string result is printed verbatim.
func Render(w io.Writer, env model.Envelope, settings config.Settings) error {
	data := env.Data
	if len(settings.SelectFields) > 0 {
		data = project(data, settings.SelectFields)
	}

	if settings.OutputMode == "json" {
		if settings.ResultsOnly {
			return writeJSON(w, data)
		}
		env.Data = data
		return writeJSON(w, env)
	}

	if !settings.ResultsOnly {
		if _, err := fmt.Fprintln(w, statusLine(env)); err != nil {
			return err
		}
		if env.Error != nil {
			return nil
		}
	}
	if err := writeLines(w, data); err != nil {
		return err
	}
	if settings.ResultsOnly {
		return nil
	}
	for _, warning := range env.Warnings {
		if _, err := fmt.Fprintln(w, "warning: "+warning); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusLine(env model.Envelope) string {
	if env.Error != nil {
		return fmt.Sprintf("error %s (exit %d): %s", env.Error.Type, env.Error.Code, env.Error.Message)
	}
	parts := []string{"ok", env.Meta.Command}
	if env.Meta.Network != "" {
		parts = append(parts, "network="+env.Meta.Network)
	}
	if env.Meta.RequestID != "" {
		parts = append(parts, "request_id="+env.Meta.RequestID)
	}
	return strings.Join(parts, " ")
}

func writeLines(w io.Writer, data any) error {
	v := reflect.ValueOf(data)
	if !v.IsValid() {
		_, err := fmt.Fprintln(w, "null")
		return err
	}
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		line, err := plainLine(data)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, line)
		return err
	}
	if v.Len() == 0 {
		_, err := fmt.Fprintln(w, "[]")
		return err
	}
	for i := 0; i < v.Len(); i++ {
		line, err := plainLine(v.Index(i).Interface())
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func plainLine(v any) (string, error) {
	switch t := v.(type) {
	case Liner:
		return t.PlainLine(), nil
	case model.ActionResult:
		if s, ok := t.Result.(string); ok {
			return s, nil
		}
		return plainLine(t.Result)
	case model.ActionInfo:
		return actionSignature(t), nil
	case model.NetworkInfo:
		line := fmt.Sprintf("%s chain_id=%d explorer=%s rpc=%s", t.Name, t.ChainID, t.ExplorerHost, t.RPCURL)
		if t.Active {
			line += " (active)"
		}
		return line, nil
	}
	return toLine(normalizeValue(v))
}

// actionSignature renders an action as name(param, optional?) followed by
// its description.
func actionSignature(a model.ActionInfo) string {
	params := make([]string, 0, len(a.Parameters))
	for _, p := range a.Parameters {
		name := p.Name
		if !p.Required {
			name += "?"
		}
		params = append(params, name)
	}
	return fmt.Sprintf("%s(%s)  %s", a.Name, strings.Join(params, ", "), a.Description)
}

// project keeps only fields of each result object. An action result is
// projected through its inner value.
func project(data any, fields []string) any {
	if res, ok := data.(model.ActionResult); ok {
		res.Result = project(res.Result, fields)
		return res
	}
	switch t := normalizeValue(data).(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				out = append(out, projectMap(m, fields))
			}
		}
		return out
	case map[string]any:
		return projectMap(t, fields)
	default:
		return data
	}
}

func projectMap(m map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := m[f]; ok {
			out[f] = v
		}
	}
	return out
}

func normalizeValue(v any) any {
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return v
	}
	return out
}

func toLine(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, t[k]))
		}
		return strings.Join(parts, " "), nil
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}
}
