package results

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed analyzer version.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion reads a dotted version. Components that are not integers are
// skipped; at least major and minor must remain. Patch defaults to 0.
func ParseVersion(s string) (Version, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimPrefix(strings.TrimPrefix(cleaned, "v"), "V")
	var nums []int
	for _, part := range strings.Split(cleaned, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	if len(nums) < 2 {
		return Version{}, false
	}
	v := Version{Major: nums[0], Minor: nums[1]}
	if len(nums) > 2 {
		v.Patch = nums[2]
	}
	return v, true
}

// SupportsJSONFormat reports whether the analyzer version can emit
// `--format json` (2.0 and later).
func SupportsJSONFormat(s string) bool {
	v, ok := ParseVersion(s)
	if !ok {
		return false
	}
	return v.Major >= 2
}
