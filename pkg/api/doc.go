// Package api is the HTTP client for the Videofonik backend.
//
// # Overview
//
// The backend owns all durable state: accounts, projects, the question and
// answer tree, uploaded videos and embed settings. This package is a thin,
// typed wrapper over its REST endpoints under /api/v1:
//
//   - Authentication: [Client.Login], [Client.Register], [Client.CurrentUser]
//   - Projects: [Client.ListProjects], [Client.GetProject],
//     [Client.CreateProject], [Client.DeleteProject]
//   - Tree edits: [Client.AddNode], [Client.AddAnswer]
//   - Embedding: [Client.GetEmbedCode], [Client.AddAllowedDomain],
//     [Client.RemoveAllowedDomain]
//
// # Credentials
//
// The bearer token is never read from global state. It is supplied through
// the [Credentials] interface at construction time:
//
//	client := api.NewClient(baseURL, api.WithCredentials(api.StaticToken(token)))
//	project, err := client.GetProject(ctx, "p1")
//
// A [session.Session] satisfies [Credentials] as well.
//
// # Errors and Retries
//
// Every non-2xx response becomes an [errors.Error] carrying the HTTP status
// and the backend's "detail" message. GET requests are retried with
// exponential backoff on network failures and 5xx responses; mutations are
// sent exactly once.
//
// Each request carries a fresh X-Request-ID header unless the context
// already holds one (see [httputil.WithRequestID]).
//
// [session.Session]: github.com/videofonik/vfconsole/pkg/session.Session
// [errors.Error]: github.com/videofonik/vfconsole/pkg/errors.Error
// [httputil.WithRequestID]: github.com/videofonik/vfconsole/pkg/httputil.WithRequestID
package api
