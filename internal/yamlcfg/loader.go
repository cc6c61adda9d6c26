package yamlcfg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vk/sigchain/internal/config"
	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/vk/sigchain/internal/hcl"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// fileRoot mirrors the HCL block layout.
type fileRoot struct {
	Modules  []moduleEntry  `yaml:"modules"`
	Bindings []bindingEntry `yaml:"bindings"`
	Chain    *chainEntry    `yaml:"chain"`
}

type moduleEntry struct {
	Type      string         `yaml:"type"`
	Name      string         `yaml:"name"`
	Arguments map[string]any `yaml:"arguments"`
}

type bindingEntry struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type chainEntry struct {
	First   string `yaml:"first"`
	Last    string `yaml:"last"`
	Threads *int   `yaml:"threads"`
	Passes  int    `yaml:"passes"`
}

// Loader is the YAML implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .yaml and .yml file under paths and merges them into one
// model. At most one chain section may exist across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	files, err := hcl.FindFiles(paths, ".yaml", ".yml")
	if err != nil {
		return nil, nil, err
	}

	model := &config.Model{}
	chainFile := ""
	for _, file := range files {
		root, err := decodeFile(file)
		if err != nil {
			return nil, nil, err
		}

		for _, me := range root.Modules {
			args, err := toCtyMap(me.Arguments)
			if err != nil {
				return nil, nil, fmt.Errorf("module %q in %s: %w", me.Name, file, err)
			}
			model.Modules = append(model.Modules, &config.Module{Type: me.Type, Name: me.Name, Arguments: args})
		}
		for _, be := range root.Bindings {
			model.Bindings = append(model.Bindings, &config.Binding{From: be.From, To: be.To})
		}
		if root.Chain != nil {
			if chainFile != "" {
				return nil, nil, fmt.Errorf("duplicate chain section in %s, first defined in %s", file, chainFile)
			}
			chainFile = file
			model.Chain = &config.Chain{First: root.Chain.First, Last: root.Chain.Last, Threads: 1, Passes: root.Chain.Passes}
			if root.Chain.Threads != nil {
				model.Chain.Threads = *root.Chain.Threads
			}
		}
	}

	logger.Debug("YAML loading complete.", "files", len(files), "modules", len(model.Modules), "bindings", len(model.Bindings))
	return model, hcl.NewConverter(), nil
}

func decodeFile(path string) (*fileRoot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var root fileRoot
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&root); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode YAML file %s: %w", path, err)
	}
	return &root, nil
}

func toCtyMap(in map[string]any) (map[string]cty.Value, error) {
	out := make(map[string]cty.Value, len(in))
	for k, v := range in {
		cv, err := toCty(v)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", k, err)
		}
		out[k] = cv
	}
	return out, nil
}

// toCty converts a value produced by the YAML decoder. Sequences become
// tuples and mappings become objects, leaving conversion to the target
// field type to the converter.
func toCty(v any) (cty.Value, error) {
	switch v := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case bool:
		return cty.BoolVal(v), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case string:
		return cty.StringVal(v), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(v))
		for i, e := range v {
			cv, err := toCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = cv
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(v) == 0 {
			return cty.EmptyObjectVal, nil
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := make(map[string]cty.Value, len(v))
		for _, k := range keys {
			cv, err := toCty(v[k])
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported YAML value of type %T", v)
	}
}
