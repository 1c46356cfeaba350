package process

// FileDescriptor is the minimal capability every open file, pipe,
// socket, or channel endpoint a process can hold must satisfy. The
// kernel core only needs to know how to release one on close and
// clone one across fork; the concrete resource lives behind this
// interface rather than in this package.
type FileDescriptor interface {
	Close() error
	Clone() FileDescriptor
}

// FileDescriptorList is a sparse table of open descriptors, ported
// from process.rs's FileDescriptorList: Insert always claims the
// lowest free slot, mirroring POSIX's fd-allocation contract, and
// Set/Get/Remove index directly.
type FileDescriptorList struct {
	desc []FileDescriptor
}

// Get returns the descriptor at idx, or nil if idx is out of range or
// empty.
func (l *FileDescriptorList) Get(idx int) FileDescriptor {
	if idx < 0 || idx >= len(l.desc) {
		return nil
	}
	return l.desc[idx]
}

// Set installs fd at idx, growing the table if necessary, and returns
// whatever descriptor previously occupied that slot (nil if none).
func (l *FileDescriptorList) Set(idx int, fd FileDescriptor) FileDescriptor {
	if idx < len(l.desc) {
		old := l.desc[idx]
		l.desc[idx] = fd
		return old
	}
	grown := make([]FileDescriptor, idx+1)
	copy(grown, l.desc)
	l.desc = grown
	l.desc[idx] = fd
	return nil
}

// Insert claims the lowest free slot (growing the table by one if
// every existing slot is occupied) and returns its index.
func (l *FileDescriptorList) Insert(fd FileDescriptor) int {
	for i, slot := range l.desc {
		if slot == nil {
			l.desc[i] = fd
			return i
		}
	}
	l.desc = append(l.desc, fd)
	return len(l.desc) - 1
}

// Remove clears idx and returns whatever descriptor was there, or nil.
func (l *FileDescriptorList) Remove(idx int) FileDescriptor {
	if idx < 0 || idx >= len(l.desc) {
		return nil
	}
	fd := l.desc[idx]
	l.desc[idx] = nil
	return fd
}

// Clone deep-copies every occupied slot via FileDescriptor.Clone, for
// Process.Fork.
func (l *FileDescriptorList) Clone() FileDescriptorList {
	out := FileDescriptorList{desc: make([]FileDescriptor, len(l.desc))}
	for i, fd := range l.desc {
		if fd != nil {
			out.desc[i] = fd.Clone()
		}
	}
	return out
}
