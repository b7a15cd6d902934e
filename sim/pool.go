package sim

import "container/heap"

// machinePool holds the live machines of one category as a min-heap keyed
// by TillBilling against the pool's clock: the root is the machine closest
// to the end of a paid billing period, which is the cheapest one to
// terminate. The key depends on the clock, not on job assignments, so the
// heap is re-established lazily when the pool is consulted with a newer
// clock instead of on every insertion.
type machinePool struct {
	machines machineHeap
}

func newMachinePool() *machinePool {
	p := &machinePool{}
	p.machines.now = 0
	heap.Init(&p.machines)
	return p
}

// Len returns the number of live machines.
func (p *machinePool) Len() int {
	return len(p.machines.items)
}

// Add inserts a machine under the pool's current clock.
func (p *machinePool) Add(m *Machine) {
	heap.Push(&p.machines, m)
}

// Items exposes the live machines for dispatch scans. Callers must not
// append to or reorder the returned slice.
func (p *machinePool) Items() []*Machine {
	return p.machines.items
}

// PopClosest removes and returns the machine with the smallest
// TillBilling(now). Returns nil if the pool is empty.
func (p *machinePool) PopClosest(now float64) *Machine {
	if len(p.machines.items) == 0 {
		return nil
	}
	p.rekey(now)
	return heap.Pop(&p.machines).(*Machine)
}

// rekey re-derives the heap order for the given clock. A no-op unless the
// clock moved since the last selection.
func (p *machinePool) rekey(now float64) {
	if p.machines.now == now {
		return
	}
	p.machines.now = now
	heap.Init(&p.machines)
}

// machineHeap implements heap.Interface keyed by TillBilling(now).
type machineHeap struct {
	items []*Machine
	now   float64
}

func (h machineHeap) Len() int { return len(h.items) }

func (h machineHeap) Less(i, j int) bool {
	return h.items[i].TillBilling(h.now) < h.items[j].TillBilling(h.now)
}

func (h machineHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *machineHeap) Push(x any) {
	h.items = append(h.items, x.(*Machine))
}

func (h *machineHeap) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[0 : n-1]
	return item
}
