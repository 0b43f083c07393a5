package opt

import (
	"runtime"
	"testing"
)

func TestHasAESHash(t *testing.T) {
	switch runtime.GOARCH {
	case "amd64", "386", "arm64", "s390x":
		t.Logf("GOARCH=%s HasAESHash_=%v", runtime.GOARCH, HasAESHash_)
	default:
		if HasAESHash_ {
			t.Fatalf("GOARCH=%s reports AES hashing", runtime.GOARCH)
		}
	}
	if HasAESHash_ != hasAESHash() {
		t.Fatal("detection is not stable")
	}
}
