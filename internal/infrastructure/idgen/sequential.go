package idgen

import (
	"fmt"
	"strconv"
	"strings"
)

// Width is the minimum number of digits after the prefix.
const Width = 3

// Sequential allocates prefix + zero-padded (max numeric suffix + 1).
// Ids with a different prefix or a non-numeric suffix are ignored.
type Sequential struct{}

func (Sequential) NextID(prefix string, existing []string) string {
	max := 0
	for _, id := range existing {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, Width, max+1)
}
