package cursorerr

import (
	"fmt"
	"testing"

	"github.com/cursorbridge/cursorbridge/internal/wire"
	"google.golang.org/grpc/codes"
)

func TestToStatusMapsSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{fmt.Errorf("wrap: %w", Unauthorized), codes.Unauthenticated},
		{fmt.Errorf("wrap: %w", DeadlineExceeded), codes.DeadlineExceeded},
		{fmt.Errorf("wrap: %w", ProtocolFraming), codes.DataLoss},
		{fmt.Errorf("wrap: %w", TransportIO), codes.Unavailable},
	}
	for _, c := range cases {
		got := ToStatus(c.err).Code()
		if got != c.want {
			t.Errorf("ToStatus(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestToStatusPrefersTrailerCode(t *testing.T) {
	terr := &wire.TrailerError{Status: int(codes.ResourceExhausted), Message: "quota exceeded"}
	st := ToStatus(terr)
	if st.Code() != codes.ResourceExhausted {
		t.Fatalf("got code %v, want ResourceExhausted", st.Code())
	}
	if st.Message() != "quota exceeded" {
		t.Fatalf("got message %q", st.Message())
	}
}
