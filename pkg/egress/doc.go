// Package egress manages the pool of egress paths (proxies) used to reach the
// remote API.
//
// The pool is configured from a single comma-separated list:
//
//	PROXY_URL="socks5://u:p@10.0.0.1:1080,http://10.0.0.2:3128"
//
// At most MaxDescriptors entries are kept. An empty list means direct mode.
//
// # Selection
//
//	sel := pool.Current()   // path for this attempt
//	// ... perform the call through NewTransport(sel, cfg) ...
//	pool.Advance()          // success: next request uses the next path
//	pool.Rotate()           // failure: count it, then move on
//
// Advance and Rotate move the cursor identically; Rotate additionally records
// a failure against the abandoned index. Failure counts are diagnostic: a
// failing path stays in rotation.
//
// # Metrics
//
//   - rbx_egress_failures_total{egress} - Failures per egress path
//   - rbx_egress_rotations_total - Failover rotations
//   - rbx_egress_cursor - Index used by the next request
//   - rbx_egress_descriptors - Pool size
package egress
