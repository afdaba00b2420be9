// Package translate implements the subtitle translation engine: chunking,
// prompt construction, model response alignment, confidence scoring, rate
// limiting, and the job state machine that ties them together.
//
// The engine processes each job as one background task. Segments are split
// into chunks, each chunk becomes a single model prompt, and the response is
// aligned back to segments positionally. A chunk failure marks its segments
// with a failure placeholder and the loop continues with the next chunk, so
// one bad call never aborts a whole job.
package translate
