// Package quartustcl drives a Quartus Tcl shell (quartus_stp, or any tclsh)
// from Go over a synchronous request/response channel.
//
// Each command is wrapped in a small Tcl script that prints uniquely named
// start, middle and end sentinels around the command's output and outcome,
// so replies are found reliably in the shell's stdout stream. Subpackages
// can be used independently:
//
//   - quartus: Session API (Eval, Call, CallList, Invoke, Parse)
//   - protocol: sentinel framing and reply decoding
//   - transport: subprocess and in-memory line transports
//   - tcllist: Tcl list parsing and formatting
//   - quote: turning arbitrary strings into literal Tcl words
//   - script: parameterized Tcl scripts with quoted variables
//   - watch: re-sourcing a Tcl file when it changes
//   - metrics: Prometheus collectors for request outcomes
//   - truncate: rune-based clipping for log output
//
// # Quick Start
//
//	s, err := quartus.New()
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	sum, err := s.Eval(ctx, "expr {} + {}", 1, 2) // "3"
//	names, err := s.CallList(ctx, "get_hardware_names", nil, nil)
//
// Running against plain tclsh needs no Quartus install:
//
//	s, err := quartus.New(quartus.WithArgs("tclsh"))
//
// # Errors
//
// A Tcl error is returned as *protocol.EvalError and leaves the session
// usable. After a transport failure, a framing error or a cancelled request
// the stream cannot be trusted and the session should be closed;
// quartus.IsFatal reports these.
package quartustcl
