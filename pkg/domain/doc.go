/*
Package domain contains the core vocabulary of cadbridge.

It defines the canonical enumerations the host object model expects (document
kinds, end conditions, sketch relations, selection filters, reference planes,
axes and directions), the error taxonomy shared by every adapter, and the call
events emitted around host dispatch. This package is kept pure and free of I/O
so that adapters and tests can depend on it freely.

# Key Types

  - DocumentType, EndCondition, Relation, SelectionType: integer codes with
    bidirectional display-name lookup (English and German aliases).
  - Plane, Axis, Direction: named modelling references.
  - HostError: a failure the host reported through its own result channel.
  - Hooks: callbacks around every host call, for logging and metrics.
*/
package domain
