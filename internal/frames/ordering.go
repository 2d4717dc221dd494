package frames

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// CheckOrdering reports ErrFrameOrder when names, taken in plain string
// order, do not also run in numeric order of the last digit group before
// the extension. Names without such digits are ignored.
func CheckOrdering(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	prev, prevName := int64(-1), ""
	for _, name := range sorted {
		n, ok := lastNumber(name)
		if !ok {
			continue
		}
		if n < prev {
			return fmt.Errorf("%w: %q sorts after %q", ErrFrameOrder, name, prevName)
		}
		prev, prevName = n, name
	}
	return nil
}

func lastNumber(name string) (int64, bool) {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	end := -1
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] >= '0' && name[i] <= '9' {
			end = i + 1
			break
		}
	}
	if end < 0 {
		return 0, false
	}
	start := end - 1
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	n, err := strconv.ParseInt(name[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
