// Package collection holds the few generic slice helpers the repositories
// and services share when expanding references:
//
//	ids := collection.Pluck(entries, func(e models.CartEntry) primitive.ObjectID { return e.PlantID })
//	byID := collection.KeyBy(plants, func(p models.Plant) primitive.ObjectID { return p.ID })
package collection

// Map transforms each element of s using fn.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, len(s))
	for i, v := range s {
		out[i] = fn(v)
	}
	return out
}

// Unique drops repeated elements, keeping first occurrences in order.
func Unique[T comparable](s []T) []T {
	seen := make(map[T]struct{}, len(s))
	out := make([]T, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Pluck extracts a key from every element and de-duplicates the result,
// ready for an $in lookup.
func Pluck[T any, K comparable](s []T, fn func(T) K) []K {
	return Unique(Map(s, fn))
}

// KeyBy indexes s by the key fn produces. The last element wins on a clash.
func KeyBy[T any, K comparable](s []T, fn func(T) K) map[K]T {
	out := make(map[K]T, len(s))
	for _, v := range s {
		out[fn(v)] = v
	}
	return out
}
