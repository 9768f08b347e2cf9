package inventory

import "sort"

// Source stock disponible de un producto en una bodega.
type Source struct {
	WarehouseID   string
	WarehouseName string
	Quantity      int
}

// Take cantidad a descontar de una bodega. Before es la cantidad previa al descuento.
type Take struct {
	WarehouseID   string
	WarehouseName string
	Before        int
	Taken         int
}

// After cantidad que queda en la bodega tras el descuento.
func (t Take) After() int { return t.Before - t.Taken }

// SortSources ordena por nombre de bodega ascendente; empate por ID.
func SortSources(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].WarehouseName != sources[j].WarehouseName {
			return sources[i].WarehouseName < sources[j].WarehouseName
		}
		return sources[i].WarehouseID < sources[j].WarehouseID
	})
}

// Allocate recorre las bodegas en orden alfabético tomando min(restante, disponible) de cada una
// hasta cubrir requested. Ignora bodegas sin stock. remaining > 0 indica que no alcanzó.
// No modifica sources.
func Allocate(sources []Source, requested int) (takes []Take, remaining int) {
	ordered := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.Quantity > 0 {
			ordered = append(ordered, s)
		}
	}
	SortSources(ordered)

	remaining = requested
	for _, s := range ordered {
		if remaining <= 0 {
			break
		}
		take := min(remaining, s.Quantity)
		takes = append(takes, Take{
			WarehouseID:   s.WarehouseID,
			WarehouseName: s.WarehouseName,
			Before:        s.Quantity,
			Taken:         take,
		})
		remaining -= take
	}
	return takes, remaining
}

// Total suma la cantidad disponible de todas las bodegas.
func Total(sources []Source) int {
	total := 0
	for _, s := range sources {
		if s.Quantity > 0 {
			total += s.Quantity
		}
	}
	return total
}
