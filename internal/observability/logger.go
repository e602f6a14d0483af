package observability

import "github.com/tphakala/soundbank/internal/logger"

var log = logger.Global().Module("metrics")
