package mm

// PhysicalLayout is the usable physical memory range a boot-time
// device-tree walk discovers, in bytes from the start of RAM.
type PhysicalLayout struct {
	Base uint64
	Size uint64
}

// End returns the exclusive end of the range, for InitPhysicalAlloc.
func (l PhysicalLayout) End() uint64 { return l.Base + l.Size }
