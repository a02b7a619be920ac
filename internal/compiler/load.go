package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/domq/internal/field"
)

// Load error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeNoModel     = "E007" // Requested model not declared
	ErrCodeInvalid     = "E008" // Models failed validation
)

// LoadError represents an error that occurred while loading models.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDir loads, compiles and validates the CUE models of a directory.
// Relations may point at models declared elsewhere.
func LoadDir(dir string) ([]Model, error) {
	models, err := LoadModels(dir)
	if err != nil {
		return nil, err
	}
	if errs := Validate(models, true); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, &LoadError{Code: ErrCodeInvalid, Message: strings.Join(msgs, "; ")}
	}
	return models, nil
}

// LoadModels loads and compiles the CUE models of a directory without
// validating them.
func LoadModels(dir string) ([]Model, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("models directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing models directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	models, err := CompileModels(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(models) == 0 {
		return nil, &LoadError{Code: ErrCodeNoModel, Message: fmt.Sprintf("no models found in %s", dir)}
	}
	return models, nil
}

// LoadFields loads a field set from a .yaml/.yml/.json field file or from
// a directory of CUE models. model selects the model of a directory; it
// may be empty when the directory declares a single model.
func LoadFields(path, model string) (*field.Set, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return field.LoadFile(path)
	}

	models, err := LoadDir(path)
	if err != nil {
		return nil, err
	}

	if model == "" {
		if len(models) > 1 {
			names := make([]string, len(models))
			for i, m := range models {
				names[i] = m.Name
			}
			return nil, &LoadError{
				Code:    ErrCodeNoModel,
				Message: fmt.Sprintf("%s declares several models, choose one of %s", path, strings.Join(names, ", ")),
			}
		}
		return models[0].Set()
	}

	for _, m := range models {
		if m.Name == model {
			return m.Set()
		}
	}
	return nil, &LoadError{Code: ErrCodeNoModel, Message: fmt.Sprintf("model %q not found in %s", model, path)}
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeBuildFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
