/*
Package domain contains the core domain models for the pathway engine.

It defines the fundamental entities of the conversation state machine: the
immutable Pathway graph (Nodes, Edges, Conditions), the mutable per-call State,
the Effects the engine asks the telephony host to perform, and the error
taxonomy. This package is kept pure and free of external dependencies like I/O
or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Pathway: the directed graph describing a scripted conversation flow.
  - Node: one state in the graph (conversation, app action, end call, transfer).
  - Edge: a guarded transition between nodes, either static or AI-judged.
  - State: the runtime snapshot of a call (current node, variables, history).
  - Effect: a structural representation of what the host should speak or do.
*/
package domain
