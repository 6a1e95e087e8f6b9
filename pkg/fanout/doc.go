// Package fanout joins concurrent per-parent fetches into one ordered result.
//
// Canvas exposes enrollments per course, so listing every enrollment of a
// user means one request per course. This package issues those requests in
// parallel and reassembles the results by input position rather than by
// completion order.
//
// Example usage:
//
//	resources := canvas.NewResources(c)
//	courses, err := resources.ListCourses(ctx, profile)
//	...
//	agg := fanout.NewAggregator(fanout.DefaultConfig())
//	enrollments, err := agg.AggregateEnrollments(ctx, resources, profile, courses)
//
// The aggregator:
//   - Returns an empty slice for an empty course list without any request
//   - Starts one goroutine per course (optionally capped by MaxConcurrency)
//   - Stores each course's result in its own slot, so no locking is needed
//   - Fails as a whole if any course fails; partial data is never returned
//   - Cancels siblings on the first failure unless CancelOnError is false
//   - Reports the failure of the lowest input index among genuine failures
package fanout
