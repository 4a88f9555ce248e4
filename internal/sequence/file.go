package sequence

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"headerflow/internal/core"
)

// callablePlaceholder stands in for function-valued fields when a sequence
// definition is serialized; functions are not persistable and do not round
// trip.
const callablePlaceholder = "<callable>"

// stepFile is the YAML document shape for a sequence definition file.
type stepFile struct {
	Name  string    `yaml:"name,omitempty"`
	Steps []stepDef `yaml:"steps"`
}

type stepDef struct {
	Name              string            `yaml:"name"`
	URL               string            `yaml:"url"`
	Method            string            `yaml:"method,omitempty"`
	Headers           map[string]any    `yaml:"headers,omitempty"`
	Params            map[string]any    `yaml:"params,omitempty"`
	Data              map[string]any    `yaml:"data,omitempty"`
	DependsOn         []string          `yaml:"depends_on,omitempty"`
	Extract           map[string]string `yaml:"extract,omitempty"`
	MaxRetries        *int              `yaml:"max_retries,omitempty"`
	Delay             time.Duration     `yaml:"delay,omitempty"`
	ContinueOnFailure bool              `yaml:"continue_on_failure,omitempty"`
}

// LoadFile reads static step definitions from a YAML sequence file. File
// definitions cannot carry conditions or field functions; those are only
// available to callers constructing steps in code.
func LoadFile(path string) ([]Step, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sequence file: %w", err)
	}

	var f stepFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing sequence file: %w", err)
	}

	steps := make([]Step, 0, len(f.Steps))
	for i, def := range f.Steps {
		if def.Name == "" {
			return nil, fmt.Errorf("step %d: name is required", i)
		}
		if def.URL == "" {
			return nil, fmt.Errorf("step %q: url is required", def.Name)
		}

		step := Step{
			Name:              def.Name,
			URL:               def.URL,
			Method:            def.Method,
			Headers:           Static(def.Headers),
			Params:            Static(def.Params),
			Data:              Static(def.Data),
			DependsOn:         def.DependsOn,
			Extract:           def.Extract,
			MaxRetries:        1,
			Delay:             def.Delay,
			ContinueOnFailure: def.ContinueOnFailure,
		}
		if def.MaxRetries != nil {
			step.MaxRetries = *def.MaxRetries
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// SaveFile writes step definitions to a YAML sequence file. Computed fields
// and conditions are rendered as an opaque placeholder string; a saved file
// containing them documents the shape of the sequence but cannot reproduce
// its dynamic behavior.
func SaveFile(path string, name string, steps []Step) error {
	f := stepFile{Name: name, Steps: make([]stepDef, 0, len(steps))}

	for _, step := range steps {
		retries := step.MaxRetries
		def := stepDef{
			Name:              step.Name,
			URL:               step.URL,
			Method:            step.Method,
			Headers:           serializeField(step.Headers),
			Params:            serializeField(step.Params),
			Data:              serializeField(step.Data),
			DependsOn:         step.DependsOn,
			Extract:           step.Extract,
			MaxRetries:        &retries,
			Delay:             step.Delay,
			ContinueOnFailure: step.ContinueOnFailure,
		}
		f.Steps = append(f.Steps, def)
	}

	out, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("encoding sequence file: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing sequence file: %w", err)
	}
	return nil
}

func serializeField(f Field) map[string]any {
	if f.IsComputed() {
		return map[string]any{callablePlaceholder: true}
	}

	static := f.StaticMap()
	if static == nil {
		return nil
	}

	out := make(map[string]any, len(static))
	for k, v := range static {
		switch v.(type) {
		case ValueFunc, func(core.Context) (any, error):
			out[k] = callablePlaceholder
		default:
			out[k] = v
		}
	}
	return out
}
