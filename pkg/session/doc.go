/*
Package session implements the lifecycle of per-session cache stores.

A Store is created when a session is opened (for example, once per
authenticated account), lives as long as the session, and is discarded on
Close. The Manager also serializes compound operations on one session
(read, compute, write) with reference-counted per-session locks, and can
report what each of those operations changed.
*/
package session
