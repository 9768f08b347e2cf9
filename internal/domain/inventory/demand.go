package inventory

import "math"

// Demand cantidad agregada de un producto sobre varias líneas.
type Demand struct {
	ProductID string
	Quantity  int
}

// Aggregate agrupa por producto sumando cantidades, conservando el orden de primera aparición.
// Una suma que desborda queda en math.MaxInt.
func Aggregate(productIDs []string, quantities []int) []Demand {
	index := make(map[string]int, len(productIDs))
	out := make([]Demand, 0, len(productIDs))
	for i, id := range productIDs {
		if pos, ok := index[id]; ok {
			out[pos].Quantity = addSaturating(out[pos].Quantity, quantities[i])
			continue
		}
		index[id] = len(out)
		out = append(out, Demand{ProductID: id, Quantity: quantities[i]})
	}
	return out
}

func addSaturating(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
