// Package service runs index actions and document mapping against the registry.
package service

import (
	"fmt"
	"slices"
	"strings"
)

// Action is an operation applied to a selection of indices.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionOpen     Action = "open"
	ActionClose    Action = "close"
	ActionRefresh  Action = "refresh"
	ActionReadOnly Action = "readonly"
	ActionWritable Action = "writable"
)

// Include values select the parts of an index touched by create and update.
const (
	IncludeIndex   = "index"
	IncludeMapping = "mapping"
)

var allowedIncludes = []string{IncludeIndex, IncludeMapping}

var actions = []Action{
	ActionCreate, ActionUpdate, ActionDelete, ActionOpen,
	ActionClose, ActionRefresh, ActionReadOnly, ActionWritable,
}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(actions, a) {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// Destructive reports whether the action removes data.
func (a Action) Destructive() bool {
	return a == ActionDelete
}

// AcceptsInclude reports whether the action honours Options.Include.
func (a Action) AcceptsInclude() bool {
	return a == ActionCreate || a == ActionUpdate
}

// Options tune an action run.
type Options struct {
	Include []string
	// Force closes the index before an update and opens it afterwards.
	Force bool
}

// ValidateInclude rejects include values other than index and mapping.
func ValidateInclude(include []string) error {
	for _, v := range include {
		if !slices.Contains(allowedIncludes, v) {
			return fmt.Errorf("unknown include %q: allowed values are %s",
				strings.Join(include, ","), strings.Join(allowedIncludes, ","))
		}
	}
	return nil
}

func (o Options) includes(value string) bool {
	return slices.Contains(o.Include, value)
}
