// Package host owns the native-messaging request loop.
//
// Ownership boundary:
// - request dispatch and response wording
// - read -> dispatch -> write service loop
//
// Lifecycle order:
// - awaiting_request -> dispatching -> awaiting_request
//
// - end of stream moves to closed; transport faults move to fatal.
//
// One request is fully answered, child process included, before the next
// frame is read.
package host
