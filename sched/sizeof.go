package sched

// cacheLineSize is the padding CoreInfo uses to keep each core's hot
// fields off a neighbor's cache line. AArch64 implementations vary
// between 64 and 128 byte lines; 128 covers the larger case, matching
// the conservative choice made for Apple Silicon/ARM64 targets.
const cacheLineSize = 128
