// Package quartus drives a Quartus (or any Tcl) shell as a synchronous
// request/response service.
//
// A Session launches the shell once and then runs one command at a time:
//
//	s, err := quartus.New(quartus.WithArgs("quartus_stp", "-s"))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	sum, err := s.Eval(ctx, "expr {} + {}", 1, 2) // "3"
//
//	names, err := s.CallList(ctx, "get_hardware_names", nil, nil)
//
//	devices, err := s.CallList(ctx, "get_device_names", nil,
//	    quartus.NewKwargs(quartus.Kw("hardware_name", names[0])))
//
// Arguments are always quoted, so values containing braces, brackets,
// dollar signs or backslashes reach the command unchanged.
//
// # Errors
//
// A Tcl error surfaces as *protocol.EvalError (see IsEvalError) and leaves
// the session usable. Transport failures, broken framing, and cancelling a
// request while it runs leave the session unusable (see IsFatal): close it
// and start a new one.
//
// # Configuration
//
// Config can be built in code, loaded from YAML, TOML or JSON with
// LoadConfig, and overlaid from QUARTUSTCL_* environment variables with
// Config.LoadFromEnv.
package quartus
