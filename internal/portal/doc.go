// Package portal maintains an authenticated session against the ASP.NET workshop
// registration portal.
//
// A Session performs the form login handshake (replaying the hidden __VIEWSTATE and
// __EVENTVALIDATION tokens), keeps the resulting cookies, and fetches raw listing, detail
// and roster pages. Parsing those pages is the job of internal/extract.
//
// Failures are classified so callers can react differently to each:
//
//   - ErrConnection: DNS, refused connections, timeouts. The portal is unreachable.
//   - ErrServer: unexpected responses, including a sign-in page without its tokens.
//   - ErrAuth: the portal rejected the credential or the session expired.
//
// Transient failures (transport errors and 5xx responses) are retried with exponential
// backoff. Structural failures are never retried.
package portal
