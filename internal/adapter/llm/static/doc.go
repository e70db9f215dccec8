// Package static provides an offline reviewer that never calls a
// model. The review commands use it for dry runs, so a prompt can be
// sized and the output pipeline exercised without spending tokens.
package static
