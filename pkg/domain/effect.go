package domain

// EffectKind constants.
const (
	// EffectSpeak asks the host to synthesize and play text to the caller.
	EffectSpeak = "speak"
	// EffectTerminate asks the host to end the call.
	EffectTerminate = "terminate"
	// EffectRedirect asks the host to transfer the call to Destination.
	EffectRedirect = "redirect"
)

// Effect is one instruction for the telephony/media host. The engine returns
// effects in generation order (greeting before listening, confirmation after
// action completion); performing them is the host's responsibility.
type Effect struct {
	Kind string `json:"kind"`

	// Text is the utterance for speak effects.
	Text string `json:"text,omitempty"`

	// Interruptible marks whether the caller may barge in over this speech.
	// Farewells are spoken non-interruptibly.
	Interruptible bool `json:"interruptible,omitempty"`

	// Destination is set on redirect effects.
	Destination string `json:"destination,omitempty"`
}

// Speak builds an interruptible speak effect.
func Speak(text string) Effect {
	return Effect{Kind: EffectSpeak, Text: text, Interruptible: true}
}

// SpeakFinal builds a non-interruptible speak effect.
func SpeakFinal(text string) Effect {
	return Effect{Kind: EffectSpeak, Text: text}
}

// Terminate builds a terminate effect.
func Terminate() Effect {
	return Effect{Kind: EffectTerminate}
}

// Redirect builds a redirect effect.
func Redirect(destination string) Effect {
	return Effect{Kind: EffectRedirect, Destination: destination}
}
