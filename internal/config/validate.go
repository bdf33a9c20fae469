package config

import "fmt"

// Validate checks that Options describes a runnable invocation.
func (o *Options) Validate() error {
	switch o.Target {
	case TargetCPP, TargetJS, TargetTS, TargetVM:
	default:
		return fmt.Errorf("target: invalid value %q — must be cpp, js, ts, or vm", o.Target)
	}

	if o.Target == TargetCPP && !o.EmitHeader && !o.EmitSource {
		return fmt.Errorf("target cpp: at least one of emitHeader/emitSource must be true")
	}

	for i, root := range o.SourceRoots {
		if root == "" {
			return fmt.Errorf("sourceRoots[%d]: empty path", i)
		}
	}

	return nil
}
