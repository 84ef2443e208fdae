package classpath

import (
	"fmt"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

type Status int

const (
	Resolved Status = iota
	Unresolved
	Failed
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Resolution is the tagged outcome of resolving a class name in a space.
// Unresolved is a legitimate absence; Failed means the lookup itself broke
// (unreadable archive, corrupt class file) and Err says why.
type Resolution struct {
	Status Status
	Class  *jvm.ClassDescriptor
	Origin string // locator that supplied the class
	Err    error
}

func Found(class *jvm.ClassDescriptor, origin string) Resolution {
	return Resolution{Status: Resolved, Class: class, Origin: origin}
}

func NotFound() Resolution {
	return Resolution{Status: Unresolved}
}

func Failure(err error) Resolution {
	return Resolution{Status: Failed, Err: err}
}
