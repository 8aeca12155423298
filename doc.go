// Package auth is the authentication and authorization engine of authd.
//
// Credentials:
//   - PasswordHasher turns a clear secret into a salted bcrypt digest. Work
//     runs on a bounded pool so hashing never starves unrelated requests.
//     Verify reports a mismatch as false and only fails on a malformed digest.
//
// Sessions:
//   - TokenService signs and validates HS256 session tokens carrying the
//     user id, email, role and expiry. Nothing is stored server side.
//   - SessionCarrier moves the token between the response and the next
//     request, by default through an HttpOnly cookie.
//
// Access control:
//   - RouteAuthenticator turns a carried token into a RequestIdentity and
//     Authorize gates routes by role.
//
// Errors:
//   - Failures are go-errors values with a category and a text code.
//     Callers match with HasTextCode or on the category, never on text.
//     StatusOf maps them to HTTP status codes.
//
// Activity sinks:
//   - ActivitySink receives sign-up, sign-in and sign-out events. Sinks run
//     best-effort, their errors are logged and dropped.
package auth
