package authdoc

import (
	"errors"
	"fmt"

	"github.com/nao1215/circload/internal/config"
)

// ErrAuthentication is the root of every login error that is not an HTTP
// status failure. Use errors.Is(err, ErrAuthentication) to detect them.
var ErrAuthentication = errors.New("authentication error")

var (
	// ErrMissingLink is returned when a strategy needs a link the document
	// does not provide. The server is misconfigured for load testing, so it
	// also matches config.ErrConfiguration.
	ErrMissingLink = fmt.Errorf("%w: %w: missing a required link", ErrAuthentication, config.ErrConfiguration)

	// ErrNoSupportedAuthentication is returned when the document lists
	// strategies but none of them is supported.
	ErrNoSupportedAuthentication = fmt.Errorf("%w: no supported authentication mechanisms", ErrAuthentication)
)
