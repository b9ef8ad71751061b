package writers

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"
)

func TestIsBrokenPipe(t *testing.T) {
	if !IsBrokenPipe(fmt.Errorf("write stdout: %w", syscall.EPIPE)) || !IsBrokenPipe(io.ErrClosedPipe) {
		t.Fatalf("wrapped EPIPE and closed pipe must count as broken pipe")
	}
	if IsBrokenPipe(nil) || IsBrokenPipe(errors.New("disk full")) {
		t.Fatalf("other errors are not broken pipes")
	}
}
