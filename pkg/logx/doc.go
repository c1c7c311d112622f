// Package logx configures pgremote's structured logging.
//
// This repo uses a small wrapper (logx.Logger) on top of zerolog to keep:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - Optional peer sink (min-level + rate limiting) that forwards log lines
//     to the remote end of the control transport as protocol lines
package logx
