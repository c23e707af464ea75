package cleanup

import "fmt"

// ConfigError reports a missing or malformed rule configuration.
// It is fatal to the whole run.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("cleanup config: %v", e.Err)
	}
	return fmt.Sprintf("cleanup config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileOperationError reports a read/write failure on a single file.
// It is recorded in the report and the run continues.
type FileOperationError struct {
	Op   string // "read", "write", "delete", "transform"
	File string
	Rule string
	Err  error
}

func (e *FileOperationError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("%s %s (rule %s): %v", e.Op, e.File, e.Rule, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
}

func (e *FileOperationError) Unwrap() error { return e.Err }

// ValidationError reports a malformed manifest fed to a dependency-prune
// adapter. It aborts that adapter's invocation only.
type ValidationError struct {
	File string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.File, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
