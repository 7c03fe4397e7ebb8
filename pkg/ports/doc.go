/*
Package ports defines the interfaces between the cache core and its collaborators.

Collaborators (authentication, per-side accessors) only ever see these
interfaces, which keeps them decoupled from the concrete store and lets them
be handed either the whole store or a view bound to one scope.

# Key Interfaces

  - Reader: dotted-key lookups that degrade to nil on missing paths.
  - Writer: Put and Merge.
  - Cache: Reader + Writer.

RunCacheContract is an exported test suite every Cache implementation must pass.
*/
package ports
