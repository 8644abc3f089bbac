/*
Package runner implements the cooperative run loop that drives a machine.

A Loop invokes Step on a fixed interval until the machine halts, the caller
cancels, or an optional step limit is reached. Ticks are strictly sequential:
the OnTick callback (visualization update) runs inside the tick, and starting
a loop that is already running is a no-op.

# Usage

	loop := runner.New(machine,
		runner.WithInterval(500*time.Millisecond),
		runner.WithOnTick(func(ctx context.Context, t runner.Tick) { redraw() }),
	)
	loop.Start(ctx)
	// ...
	loop.Stop()
	res := loop.Wait()

Run is the blocking form used by the CLI.
*/
package runner
