// Package health provides liveness, readiness and version endpoints.
//
// # Endpoints
//
//   - /healthz: Liveness probe, 200 while the process runs
//   - /readyz: Readiness probe, 503 when a check fails or shutdown has begun
//   - /version: Build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("routes", func(ctx context.Context) error {
//	    if len(table.Paths()) == 0 {
//	        return errors.New("no routes exposed")
//	    }
//	    return nil
//	})
//	health.Register(mux, checker, health.NewVersionInfo(version, commit, date))
//
// During graceful shutdown the server calls SetDraining so that readiness
// fails before the listener closes.
package health
