// Package httpapi carries the task service over HTTP.
//
// NewHandler serves any api.Service as JSON:
//
//	GET    /api/tasks        list, newest first
//	POST   /api/tasks        create from {"title", "description"}
//	PUT    /api/tasks/{id}   replace the task with id
//	DELETE /api/tasks/{id}   remove, answers {"id": n}
//
// Errors are {"error": "..."} with 400 for malformed input or a rejected
// field (the field name is included), 503 for api.ErrTransient and 500 for
// anything else. Client implements api.Service against such a server and
// maps 503 back to api.ErrTransient and a field rejection back to a
// *task.ValidationError, so the synchronization layer cannot tell it apart
// from an in-process backend.
package httpapi
