/*
Package pathway is a conversation pathway engine for voice and text agents.

A pathway is a directed graph of conversational states: conversation nodes
that talk with the caller, app_action nodes that perform side-effects through
integrations, and terminal end_call and transfer nodes. The engine drives a
call through that graph one turn at a time, deciding transitions by offering
the language model one named capability per outgoing edge and honoring the
one it invokes.

The engine owns logic only. Speech, telephony, and media belong to the host:
every turn returns an ordered list of effects (speak, terminate, redirect)
for the host to perform. External failures never end a call; the engine
apologizes, logs, and keeps the session alive.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/evocall/pathway"
		"github.com/evocall/pathway/pkg/adapters/openai"
	)

	func main() {
		eng, err := pathway.New("./pathways", openai.New())
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		sess, err := eng.NewSession(ctx, "bookings", "call-123", "user-1")
		if err != nil {
			log.Fatal(err)
		}

		// Opening turn: speaks the entry greeting.
		effects, err := eng.Turn(ctx, sess, "")
		if err != nil {
			log.Fatal(err)
		}
		for _, eff := range effects {
			fmt.Println(eff.Kind, eff.Text)
		}

		// Feed caller utterances until a terminate or redirect effect.
		effects, err = eng.Turn(ctx, sess, "I'd like to book a table for four")
		if err != nil {
			log.Fatal(err)
		}
		for _, eff := range effects {
			fmt.Println(eff.Kind, eff.Text)
		}
	}
*/
package pathway
