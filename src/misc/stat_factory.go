package misc

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// StatFactory is a named bag of integer counters rendered as
// "Name_key: value" lines.
type StatFactory struct {
	name  string
	stats map[string]int64
}

func (this *StatFactory) Init(name string) {
	this.name = name
	this.stats = make(map[string]int64)
}

func (this *StatFactory) Increment(key string, value int64) {
	this.stats[key] += value
}

func (this *StatFactory) Set(key string, value int64) {
	this.stats[key] = value
}

func (this *StatFactory) Value(key string) int64 {
	return this.stats[key]
}

func (this *StatFactory) ToLines() []string {
	keys := lo.Keys(this.stats)
	sort.Strings(keys)

	return lo.Map(keys, func(key string, _ int) string {
		return fmt.Sprintf("%s_%s: %d", this.name, key, this.stats[key])
	})
}
