package vm

import "github.com/WriteNaN/buzz/internal/value"

// Heap tracks every object the VM has allocated on an intrusive
// singly-linked list (Object.Next), so collection can walk and sweep it
// without a separate bookkeeping set (§4.5 "Garbage collector").
type Heap struct {
	head      *value.Object
	allocated int // bytes charged since the last collection
	watermark int // collect() triggers once allocated exceeds this
	growth    int // watermark grows by this factor (percent) after each collection
}

const (
	initialWatermark = 1 << 20 // 1 MiB of charged allocation before the first GC
	growthPercent    = 150     // watermark grows 1.5x after each collection
)

// NewHeap returns an empty heap with the initial collection watermark.
func NewHeap() *Heap {
	return &Heap{watermark: initialWatermark, growth: growthPercent}
}

// objectCost is the flat charge per allocated Object, a simplification
// of a byte-accurate accounting scheme that is good enough to drive the
// watermark trigger without sizing every payload kind individually.
const objectCost = 64

// track links o onto the heap's allocation list and charges its cost,
// returning o unchanged so callers can allocate-and-track in one
// expression.
func (h *Heap) track(o *value.Object) *value.Object {
	o.Next = h.head
	h.head = o
	h.allocated += objectCost
	return o
}

// shouldCollect reports whether allocated bytes have crossed the
// watermark since the last collection (§4.5 "Trigger").
func (h *Heap) shouldCollect() bool {
	return h.allocated > h.watermark
}

// grow raises the watermark after a collection completes, the donor's
// "growth factor applied at each collection" policy.
func (h *Heap) grow() {
	h.watermark = h.allocated*h.growth/100 + initialWatermark
}
