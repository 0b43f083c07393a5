package opt

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// HasAESHash_ reports whether the runtime hashes strings with the hardware
// AES path. The runtime enables it on the same feature bits checked here.
// It's automatically detected using the `golang.org/x/sys` package.
var HasAESHash_ = hasAESHash()

func hasAESHash() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasAES && cpu.X86.HasSSSE3 && cpu.X86.HasSSE41
	case "arm64":
		return cpu.ARM64.HasAES
	case "s390x":
		return cpu.S390X.HasAES
	default:
		return false
	}
}
