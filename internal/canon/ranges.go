// Package canon holds the static mapping between sutta numbers and the
// Nikaya collections of tripitaka.online, derived from manual exploration
// of the site structure.
package canon

// CollectionInfo describes one Nikaya: a named, contiguous sub-range of the
// sutta number space.
type CollectionInfo struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	NameEN      string `json:"name_en"`
	StartID     int    `json:"start"`
	EndID       int    `json:"end"`
	Description string `json:"description"`
}

// Size returns the number of sutta IDs covered by the collection.
func (c CollectionInfo) Size() int {
	return c.EndID - c.StartID + 1
}

// Contains reports whether the sutta number falls inside the collection.
func (c CollectionInfo) Contains(id int) bool {
	return id >= c.StartID && id <= c.EndID
}

// ranges is ordered by StartID. The end of each collection abuts the start
// of the next; sutta numbers below 17 do not resolve to any collection.
var ranges = []CollectionInfo{
	{
		Key:         "digha",
		Name:        "දීඝ නිකාය",
		NameEN:      "Dīgha Nikāya",
		StartID:     17,
		EndID:       264,
		Description: "Long Discourses",
	},
	{
		Key:         "majjhima",
		Name:        "මජ්ඣිම නිකාය",
		NameEN:      "Majjhima Nikāya",
		StartID:     265,
		EndID:       979,
		Description: "Middle Length Discourses",
	},
	{
		Key:         "samyutta",
		Name:        "සංයුත්ත නිකාය",
		NameEN:      "Saṃyutta Nikāya",
		StartID:     980,
		EndID:       1172,
		Description: "Connected Discourses",
	},
	{
		Key:         "khuddaka",
		Name:        "ඛුද්දක නිකාය",
		NameEN:      "Khuddaka Nikāya",
		StartID:     1173,
		EndID:       5756,
		Description: "Minor Collection",
	},
	{
		Key:         "anguttara",
		Name:        "අංගුත්තර නිකාය",
		NameEN:      "Aṅguttara Nikāya",
		StartID:     5757,
		EndID:       15702,
		Description: "Numerical Discourses",
	},
}

// Lookup resolves a sutta number to its collection.
func Lookup(id int) (CollectionInfo, bool) {
	for _, r := range ranges {
		if r.Contains(id) {
			return r, true
		}
	}
	return CollectionInfo{}, false
}

// ByKey returns the collection registered under key.
func ByKey(key string) (CollectionInfo, bool) {
	for _, r := range ranges {
		if r.Key == key {
			return r, true
		}
	}
	return CollectionInfo{}, false
}

// Ranges returns a copy of all collections in table order.
func Ranges() []CollectionInfo {
	out := make([]CollectionInfo, len(ranges))
	copy(out, ranges)
	return out
}

// Keys returns the collection keys in table order.
func Keys() []string {
	out := make([]string, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, r.Key)
	}
	return out
}

// DefaultOrder is the traditional scrape order, smallest collection first.
func DefaultOrder() []string {
	return []string{"digha", "majjhima", "samyutta", "khuddaka", "anguttara"}
}

// MinID returns the lowest sutta number covered by any collection.
func MinID() int {
	min := ranges[0].StartID
	for _, r := range ranges {
		if r.StartID < min {
			min = r.StartID
		}
	}
	return min
}

// MaxID returns the highest sutta number covered by any collection.
func MaxID() int {
	max := 0
	for _, r := range ranges {
		if r.EndID > max {
			max = r.EndID
		}
	}
	return max
}

// TotalSuttas estimates the corpus size by summing all range sizes.
func TotalSuttas() int {
	total := 0
	for _, r := range ranges {
		total += r.Size()
	}
	return total
}
