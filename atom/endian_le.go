//go:build 386 || amd64 || amd64p32 || arm || arm64 || loong64 || mips64le || mipsle || ppc64le || riscv64 || wasm

package atom

// Inline atoms address the packed word byte-wise and are defined for
// little-endian targets only. There is deliberately no big-endian counterpart
// of this file: building for a big-endian target fails at compile time
// instead of silently mis-ordering inline bytes.
const littleEndianOnly = true
