// Package logging provides structured logging for projectdeck.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Output to stderr and/or an append-only log file
//   - Automatic context field injection (operation id, project id, command)
//   - Redaction of credentials embedded in environment URLs
//
// # Usage
//
// Create logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Close()
//
// Log with context:
//
//	ctx = logging.WithOperationID(ctx, uuid.NewString())
//	ctx = logging.WithProjectID(ctx, p.ID)
//	logger.Info(ctx, "project updated", zap.Strings("fields", changed))
//
// Output includes automatic correlation:
//
//	{
//	  "ts": "2026-03-02T10:15:30.000+0100",
//	  "level": "info",
//	  "msg": "project updated",
//	  "op.id": "0b5e...",
//	  "project.id": "Xq3v9TfWk1aB",
//	  "fields": ["color"]
//	}
//
// The interactive panel logs to a file only, so terminal output is never
// interleaved with log lines.
//
// # Testing
//
// NewTestLogger returns a logger backed by zaptest/observer with assertion
// helpers (AssertLogged, AssertField, AssertNoCredentials).
package logging
