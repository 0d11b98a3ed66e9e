/*
Package session manages the connection to a running host application.

A Session owns the application handle and an explicit handle to the document
being modelled, so adapters never depend on the host's ambient "active
document". Every adapter operation runs through Session.Do, which serializes
access to the connection (optionally across processes with a
ports.DistributedLocker) because the host exposes a single shared document
and selection state.
*/
package session
