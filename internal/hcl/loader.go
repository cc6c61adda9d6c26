package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/sigchain/internal/config"
	"github.com/vk/sigchain/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension picked up when a directory is loaded.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their blocks into one
// model. At most one chain block may exist across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := FindFiles(paths, Extension)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()
	var chainFile string

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, mb := range root.Modules {
			mod, err := translateModule(ctx, mb)
			if err != nil {
				return nil, nil, err
			}
			model.Modules = append(model.Modules, mod)
		}
		for _, bb := range root.Bindings {
			model.Bindings = append(model.Bindings, &config.Binding{From: bb.From, To: bb.To})
		}
		for _, cb := range root.Chains {
			if chainFile != "" {
				return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, hcl.Diagnostics{{
					Severity: hcl.DiagError,
					Summary:  `Duplicate "chain" block`,
					Detail:   fmt.Sprintf("Only one \"chain\" block is allowed; the first one is in %s.", chainFile),
				}})
			}
			chainFile = file
			model.Chain = translateChain(cb)
		}
	}

	logger.Debug("HCL loading complete.", "modules", len(model.Modules), "bindings", len(model.Bindings), "has_chain", model.Chain != nil)
	return model, NewConverter(), nil
}

func translateModule(ctx context.Context, mb *moduleBlock) (*config.Module, error) {
	mod := &config.Module{Type: mb.Type, Name: mb.Name, Arguments: map[string]cty.Value{}}
	if !isExprDefined(ctx, mb.Arguments, "arguments") {
		return mod, nil
	}

	val, diags := mb.Arguments.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("module %q: %w", mb.Name, diags)
	}
	if val.IsNull() {
		return mod, nil
	}
	if !val.Type().IsObjectType() && !val.Type().IsMapType() {
		return nil, fmt.Errorf("module %q (%s): arguments must be an object, got %s", mb.Name, mb.Arguments.Range(), val.Type().FriendlyName())
	}
	for k, v := range val.AsValueMap() {
		mod.Arguments[k] = v
	}
	return mod, nil
}

func translateChain(cb *chainBlock) *config.Chain {
	c := &config.Chain{First: cb.First, Last: cb.Last, Threads: 1, Passes: cb.Passes}
	if cb.Threads != nil {
		c.Threads = *cb.Threads
	}
	return c
}

// isExprDefined reports whether an optional attribute was actually written.
// gohcl fills omitted optional expressions with a zero-width placeholder.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

// FindFiles walks all given paths and returns a flat, de-duplicated list of
// files with the given extension. Missing paths are skipped.
func FindFiles(paths []string, exts ...string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if !hasExt(p, exts) {
			return
		}
		if _, dup := seen[p]; !dup {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}

func hasExt(p string, exts []string) bool {
	ext := filepath.Ext(p)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
