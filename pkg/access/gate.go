package access

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AllowList is the set of Telegram user IDs permitted to use the bot.
// An empty list lets everyone through.
type AllowList struct {
	ids map[int64]struct{}
}

// NewAllowList builds an AllowList from explicit IDs.
func NewAllowList(ids ...int64) AllowList {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return AllowList{ids: set}
}

// ParseAllowList parses a comma-separated list such as "336979047, 42".
// Blank entries are skipped.
func ParseAllowList(raw string) (AllowList, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return AllowList{}, fmt.Errorf("invalid user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return NewAllowList(ids...), nil
}

// Allows reports whether id may use the bot.
func (a AllowList) Allows(id int64) bool {
	if len(a.ids) == 0 {
		return true
	}
	_, ok := a.ids[id]
	return ok
}

// Len returns the number of listed IDs.
func (a AllowList) Len() int {
	return len(a.ids)
}

// IDs returns the listed IDs in ascending order.
func (a AllowList) IDs() []int64 {
	out := make([]int64, 0, len(a.ids))
	for id := range a.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String renders the list back into its comma-separated form.
func (a AllowList) String() string {
	ids := a.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
