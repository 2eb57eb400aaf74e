/*
Package ports defines the interfaces between the pathway engine and its
external collaborators: the configuration store that supplies pathway
definitions, the language model service, the credential store, the app action
executors, and the analytics event sink.

The engine depends only on these interfaces; the pkg/adapters tree provides
the concrete implementations (file, memory, redis, openai).
*/
package ports
