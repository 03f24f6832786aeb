package messages

import (
	"errors"
	"io"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := Error{Err: errors.New("boom"), Context: "tail"}
	if err.Error() != "tail: boom" {
		t.Fatalf("unexpected formatted error: %q", err.Error())
	}

	err = Error{Err: errors.New("boom")}
	if err.Error() != "boom" {
		t.Fatalf("unexpected formatted error without context: %q", err.Error())
	}
}

func TestErrorUnwraps(t *testing.T) {
	err := Error{Err: io.ErrUnexpectedEOF, Context: "read"}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected errors.Is to see the wrapped error")
	}
}
