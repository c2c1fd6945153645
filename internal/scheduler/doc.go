// Package scheduler decides when each card becomes due and how its
// interval evolves after every answer. Cards move through the queues
// New -> Learning -> Review, lapsing into Relearning and back. All
// numeric tuning comes from config.SchedulerConfig; the engine itself
// holds no literals.
//
// Answer transitions are atomic per card: the engine mutates a clone
// and swaps it into the store in one step, so an abandoned transition
// never leaves mixed queue/interval/ease state behind.
package scheduler
