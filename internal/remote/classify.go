package remote

import (
	"context"
	"errors"
	"net"

	"github.com/basilica-ai/minercheck/internal/checks"
)

// Classify maps an error from SSHRunner or HTTPProber to an outcome kind.
func Classify(err error) checks.Kind {
	if err == nil {
		return ""
	}

	var keyErr *KeyError
	var cmdErr *CommandError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return checks.KindTimeout
	case errors.As(err, &keyErr):
		return checks.KindEnvironmentMissing
	case errors.As(err, &cmdErr):
		return checks.KindCheckFailed
	case errors.As(err, &netErr) && netErr.Timeout():
		return checks.KindTimeout
	default:
		return checks.KindRemoteUnreachable
	}
}
