// Package inventory manages the player's item stacks against the slot limit.
//
// Two caps apply: the number of distinct stacks never exceeds
// InventorySlots, and a single stack never holds more than InventorySlots
// units. Stacks that drop to zero are pruned.
package inventory

import "github.com/nathoo/kaito/types"

// Quantity returns how many units of name the player holds.
func Quantity(p *types.Player, name string) int {
	for _, it := range p.Inventory {
		if it.Name == name {
			return it.Quantity
		}
	}
	return 0
}

// Has reports whether the player holds at least n units of name.
func Has(p *types.Player, name string, n int) bool {
	return Quantity(p, name) >= n
}

// CanAdd reports whether one more unit of name fits.
func CanAdd(p *types.Player, name string) bool {
	for _, it := range p.Inventory {
		if it.Name == name {
			return it.Quantity < p.InventorySlots
		}
	}
	return len(p.Inventory) < p.InventorySlots
}

// Room returns how many more units of name fit.
func Room(p *types.Player, name string) int {
	for _, it := range p.Inventory {
		if it.Name == name {
			return max(p.InventorySlots-it.Quantity, 0)
		}
	}
	if len(p.Inventory) >= p.InventorySlots {
		return 0
	}
	return p.InventorySlots
}

// Add adds up to n units and returns how many fit. Excess is dropped.
func Add(p *types.Player, name string, n int) int {
	if n <= 0 || name == "" {
		return 0
	}
	for i, it := range p.Inventory {
		if it.Name != name {
			continue
		}
		room := p.InventorySlots - it.Quantity
		if room <= 0 {
			return 0
		}
		if n > room {
			n = room
		}
		p.Inventory[i].Quantity += n
		return n
	}
	if len(p.Inventory) >= p.InventorySlots {
		return 0
	}
	if n > p.InventorySlots {
		n = p.InventorySlots
	}
	p.Inventory = append(p.Inventory, types.InventoryItem{Name: name, Quantity: n})
	return n
}

// Remove takes n units of name. It fails without change if fewer are held.
func Remove(p *types.Player, name string, n int) bool {
	if n <= 0 {
		return true
	}
	for i, it := range p.Inventory {
		if it.Name != name {
			continue
		}
		if it.Quantity < n {
			return false
		}
		p.Inventory[i].Quantity -= n
		Prune(p)
		return true
	}
	return false
}

// Prune drops zero-quantity stacks.
func Prune(p *types.Player) {
	kept := p.Inventory[:0]
	for _, it := range p.Inventory {
		if it.Quantity > 0 {
			kept = append(kept, it)
		}
	}
	p.Inventory = kept
}

// Count tallies a multiset of names.
func Count(names []string) map[string]int {
	m := make(map[string]int, len(names))
	for _, n := range names {
		m[n]++
	}
	return m
}

// Missing returns the first name of the multiset the player cannot cover.
func Missing(p *types.Player, names []string) (string, bool) {
	need := Count(names)
	for _, n := range names {
		if !Has(p, n, need[n]) {
			return n, true
		}
	}
	return "", false
}
