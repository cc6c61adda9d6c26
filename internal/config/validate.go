package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vk/sigchain/internal/address"
)

var ErrInvalid = errors.New("invalid chain configuration")

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("segment", func(fl validator.FieldLevel) bool {
		a, err := address.Parse(fl.Field().String() + ".x")
		return err == nil && !a.IsSocket()
	})
	_ = validate.RegisterValidation("taskaddr", func(fl validator.FieldLevel) bool {
		_, err := address.ParseTask(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("socketaddr", func(fl validator.FieldLevel) bool {
		_, err := address.ParseSocket(fl.Field().String())
		return err == nil
	})
}

// Validate checks the model's structure: struct tags first, then the
// cross-references that tags cannot express. Unit types and socket names are
// checked later, when modules are built.
func Validate(m *Model) error {
	if m == nil {
		return fmt.Errorf("%w: empty model", ErrInvalid)
	}

	var problems []string
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	seen := make(map[string]struct{}, len(m.Modules))
	for _, mod := range m.Modules {
		if mod == nil {
			continue
		}
		if _, dup := seen[mod.Name]; dup {
			problems = append(problems, fmt.Sprintf("module %q declared more than once", mod.Name))
		}
		seen[mod.Name] = struct{}{}
	}

	refs := make([]string, 0, 2+2*len(m.Bindings))
	if m.Chain != nil {
		refs = append(refs, m.Chain.First, m.Chain.Last)
	}
	for _, b := range m.Bindings {
		if b != nil {
			refs = append(refs, b.From, b.To)
		}
	}
	for _, ref := range refs {
		a, err := address.Parse(ref)
		if err != nil {
			continue
		}
		if _, ok := seen[a.Module]; !ok {
			problems = append(problems, fmt.Sprintf("%q refers to undeclared module %q", ref, a.Module))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalid, strings.Join(problems, "\n- "))
	}
	return nil
}
