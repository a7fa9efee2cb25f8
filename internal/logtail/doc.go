// Package logtail reads the end of tally's activity log and splits its
// lines into entries for the in-app log view.
//
// Read keeps a ring buffer of maxLines, so memory stays bounded however
// large the file grows. Lines are expected in the standard logger format
// followed by a source prefix and key=value fields:
//
//	2026/10/19 09:12:44 syncer: op=5f0c... action="adding task" err="API request failed! Please try again."
//
// Parse turns such a line into an Entry; quoted values are unquoted and
// anything that is not a key=value pair ends up in Message. Entry.Failed
// lets the view color failed operations.
package logtail
