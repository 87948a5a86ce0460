// Package retry provides bounded retry with backoff for transient failures.
//
// The [Do] function retries an operation with configurable max attempts,
// fixed or exponential delay, and an optional retryable predicate. It is
// shared by the provisioning poller and the bulk deletion engine so retry
// behavior is decided in one place instead of per call site.
package retry
