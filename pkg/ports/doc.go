/*
Package ports defines the driven ports (interfaces) cadbridge uses to reach the
host CAD application.

The host is treated as an opaque object graph with late-bound dispatch: every
object exposes named methods and properties taking positional arguments. This
decouples the sketch, feature, selection and document adapters from the
concrete transport (COM on Windows, the in-memory simulator in tests).

# Key Interfaces

  - Object: a host object handle (Call a method, Get a property).
  - Dialer: attaches to a running host and returns its application object.
  - DistributedLocker: serializes independent clients sharing one host.
*/
package ports
