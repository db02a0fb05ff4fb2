// Package inference derives trip records from raw location traces.
//
// InferTripsFromTraces sorts each user's points by time and turns every
// consecutive pair into one trip: the earlier point becomes the origin, the
// later the destination, with duration, great-circle distance and H3 cells
// derived on the way. Pairs separated by more than the configured time gap
// are treated as a break in observation and skipped. The output is an
// ordinary trip dataset and goes through validation like any import.
package inference
