// Package server holds the HTTP server configuration and lifecycle.
//
// # Configuration
//
// The Config struct defines the mount path, the listen port and the asset
// directory, plus optional timeouts. Normalize validates a Config and returns
// the canonical form used by the rest of the application; invalid values are
// reported as ErrInvalidArgument.
//
// # Lifecycle
//
// New builds the fiber application. Listen binds the socket (ErrBindFailure on
// failure) and Serve accepts connections until the context is cancelled, after
// which in-flight requests are drained. Features are mounted through the
// loader package, behind the rayid middleware. Errors of 500 and above are
// logged with the request's RayID; the client only sees the status text.
//
// # Usage
//
//	cfg, err := raw.Normalize()
//	srv := server.New(cfg, logg)
//	_ = srv.Mount(mgr)
//	err = srv.Run(ctx)
package server
