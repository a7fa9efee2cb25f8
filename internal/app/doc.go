// Package app is the composition root of tally.
//
// # Overview
//
// It wires configuration, logging, the selected task backend, the state
// store, the synchronization layer and the UI. The cmd/tally binary only
// parses flags and calls one of Run, Serve or Export.
//
// # Components
//
//   - app.go: Options, flag overrides, LoadConfig and Run (the TUI)
//   - backend.go: OpenBackend, which picks sim, http, mysql or google
//   - refresh.go: optional background reload with exponential backoff
//   - serve.go: Serve, the HTTP JSON API over a local backend
//   - export.go: Export, which writes JSON, CSV or PDF
//
// # Data Flow
//
//	Run()
//	  ├─> LoadConfig()      config.toml plus flag overrides
//	  ├─> setupLogging()    standard logger to the activity log file
//	  ├─> OpenBackend()     api.Service
//	  ├─> syncer.New()      intents against the service and the store
//	  ├─> StartRefresher()  when refresh_interval > 0
//	  └─> ui.Run()          blocks until quit
//
// # Error Handling
//
// Startup failures (bad config, unreachable database, missing OAuth token)
// are returned from Run, Serve and Export. Failures of individual intents
// are shown in the UI and logged; they never stop the program.
package app
