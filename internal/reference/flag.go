package reference

import (
	"fmt"

	"github.com/mabhi256/jmuzzle/internal/jvm"
)

// Flag is a requirement on a declaration's modifiers. Each flag is checked on
// its own against the raw access bitmask.
type Flag int

const (
	FlagPublic Flag = iota
	FlagPackageOrHigher
	FlagProtectedOrHigher
	FlagPrivateOrHigher
	FlagNonFinal
	FlagInterface
	FlagNonInterface
	FlagStatic
	FlagNonStatic
)

var flagNames = map[Flag]string{
	FlagPublic:            "public",
	FlagPackageOrHigher:   "package-or-higher",
	FlagProtectedOrHigher: "protected-or-higher",
	FlagPrivateOrHigher:   "private-or-higher",
	FlagNonFinal:          "non-final",
	FlagInterface:         "interface",
	FlagNonInterface:      "non-interface",
	FlagStatic:            "static",
	FlagNonStatic:         "non-static",
}

// Matches reports whether access satisfies the flag
func (f Flag) Matches(access jvm.AccessFlags) bool {
	switch f {
	case FlagPublic:
		return access.IsPublic()
	case FlagPackageOrHigher:
		return !access.IsPrivate()
	case FlagProtectedOrHigher:
		return access.IsPublic() || access.IsProtected()
	case FlagPrivateOrHigher:
		return true
	case FlagNonFinal:
		return !access.IsFinal()
	case FlagInterface:
		return access.IsInterface()
	case FlagNonInterface:
		return !access.IsInterface()
	case FlagStatic:
		return access.IsStatic()
	case FlagNonStatic:
		return !access.IsStatic()
	default:
		return false
	}
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Flag(%d)", int(f))
}

// ParseFlag is the inverse of String
func ParseFlag(name string) (Flag, error) {
	for flag, n := range flagNames {
		if n == name {
			return flag, nil
		}
	}
	return 0, fmt.Errorf("unknown flag %q", name)
}

func (f Flag) MarshalText() ([]byte, error) {
	if _, ok := flagNames[f]; !ok {
		return nil, fmt.Errorf("unknown flag %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *Flag) UnmarshalText(text []byte) error {
	flag, err := ParseFlag(string(text))
	if err != nil {
		return err
	}
	*f = flag
	return nil
}

// Flags is a small ordered set of flags
type Flags []Flag

func (fs Flags) Contains(flag Flag) bool {
	for _, f := range fs {
		if f == flag {
			return true
		}
	}
	return false
}

// Union returns fs plus any flags of other not already present
func (fs Flags) Union(other Flags) Flags {
	out := append(Flags(nil), fs...)
	for _, f := range other {
		if !out.Contains(f) {
			out = append(out, f)
		}
	}
	return out
}
