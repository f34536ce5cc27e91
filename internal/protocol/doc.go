// Package protocol owns the native-messaging wire contract.
//
// Ownership boundary:
// - JSON message payload codec
// - length-prefixed channel over stdin/stdout
// - request variants and response shape
package protocol
