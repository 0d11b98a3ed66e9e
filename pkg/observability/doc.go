/*
Package observability turns host-call and operation hooks into Prometheus
metrics and structured log lines.

Both producers return domain.Hooks, so they compose with Hooks.Merge and plug
into cadbridge.WithHooks.
*/
package observability
