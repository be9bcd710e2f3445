package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a Vulkan style "major.minor.patch" version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "1.2.145". Missing minor/patch components default to 0,
// so "1.2" parses as 1.2.0.
func ParseVersion(s string) (Version, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return Version{}, fmt.Errorf("empty version: %w", ErrInvalidConfig)
	}

	parts := strings.Split(in, ".")
	if len(parts) > 3 {
		return Version{}, fmt.Errorf("version %q has too many components: %w", s, ErrInvalidConfig)
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("version %q: component %q is not a number: %w", s, p, ErrInvalidConfig)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether the version was never set.
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0 or 1.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Patch, o.Patch)
	}
}

func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
