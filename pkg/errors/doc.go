// Package errors provides structured error handling with error codes for tenantcore.
//
// Every service in this module returns typed errors the caller can branch on:
//
//	err := resolver.Resolve(ctx, claims, sw)
//	if errors.IsCode(err, errors.ErrCodeTenantSuspended) {
//		// surface 403 to the caller
//	}
//
// Error codes map to HTTP status codes via MapErrorCodeToHTTPStatus. The only
// retryable code is ErrCodeSequenceContention; callers must retry with backoff
// rather than substituting a locally-guessed fiscal number.
package errors
