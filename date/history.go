package date

import (
	"iter"
	"slices"
	"sort"
)

// History stores a chronological series of values, each associated with a specific date.
// It ensures that dates are unique and the series is always sorted.
type History[T any] struct {
	days   []Date
	values []T
}

// Latest returns the latest date and value in the history.
// If the history is empty, it returns zero value.
func (h *History[T]) Latest() (day Date, value T) {
	last := len(h.days) - 1
	if last < 0 {
		return Date{}, *new(T) // return zero value of T
	}
	return h.days[last], h.values[last]
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// chronological is a private implementation to make this history chronologically sorted.
type chronological[T any] struct{ *History[T] }

func (s chronological[T]) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }

func (s chronological[T]) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

// insert adds a new point, keeping the series sorted.
func (h *History[T]) insert(on Date, q T) {
	n := len(h.days)
	h.days, h.values = append(h.days, on), append(h.values, q)
	if n > 0 && on.Before(h.days[n-1]) {
		sort.Sort(chronological[T]{h})
	}
}

// Append adds a point to the history.
//
// Existing value at that date are overwritten.
func (h *History[T]) Append(on Date, q T) *History[T] {
	if i := slices.Index(h.days, on); i >= 0 {
		// last data wins
		h.values[i] = q
		return h
	}
	h.insert(on, q)
	return h
}

// AppendFirst adds a point unless the date is already present.
// It reports whether the point was added.
func (h *History[T]) AppendFirst(on Date, q T) bool {
	if slices.Contains(h.days, on) {
		return false
	}
	h.insert(on, q)
	return true
}

// Values returns an iterator over all date/value pairs in the history, in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// Get returns the value at 'day' and true or zero value and false.
func (h *History[T]) Get(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	var value T
	return value, false
}

// ValueAsOf returns the value on a given day, or the most recent value before it.
// It returns the value and true if found, otherwise it returns the zero value and false.
func (h *History[T]) ValueAsOf(day Date) (T, bool) {
	i, found := slices.BinarySearchFunc(h.days, day, Date.Compare)
	if found {
		return h.values[i], true
	}
	// `i` is the insertion index, the value we want is the last one before it.
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Iterate returns an iterator over all unique, sorted dates from multiple History objects.
func Iterate[T any](histories ...*History[T]) iter.Seq[Date] {
	return func(yield func(Date) bool) {
		var all []Date
		for _, h := range histories {
			all = append(all, h.days...)
		}
		slices.SortFunc(all, Date.Compare)
		for _, on := range slices.Compact(all) {
			if !yield(on) {
				return
			}
		}
	}
}
