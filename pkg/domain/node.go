package domain

// NodeKind constants define the control flow behavior of a node.
const (
	// KindConversation talks with the caller: it may greet on first entry,
	// extracts variables from each utterance, and replies via the model.
	KindConversation = "conversation"
	// KindAppAction performs a side-effect through an integration and then
	// always moves on, whether the action succeeded or not.
	KindAppAction = "app_action"
	// KindEndCall speaks a farewell and hangs up. Terminal.
	KindEndCall = "end_call"
	// KindTransfer hands the call to another destination. Terminal.
	KindTransfer = "transfer"
)

// VariableType constants for ExtractionSpec.
const (
	VarString  = "string"
	VarBoolean = "boolean"
	VarNumber  = "number"
)

// Node represents one state in the pathway graph.
// Exactly one of the config fields is set, matching Kind.
type Node struct {
	ID   string `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`

	// Name is a human-readable label used in logs and graph rendering.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Start flags this node as the entry point when the pathway does not
	// declare one explicitly.
	Start bool `json:"start,omitempty" yaml:"start,omitempty"`

	Conversation *ConversationConfig `json:"conversation,omitempty" yaml:"conversation,omitempty"`
	AppAction    *AppActionConfig    `json:"app_action,omitempty" yaml:"app_action,omitempty"`
	EndCall      *EndCallConfig      `json:"end_call,omitempty" yaml:"end_call,omitempty"`
	Transfer     *TransferConfig     `json:"transfer,omitempty" yaml:"transfer,omitempty"`
}

// ConversationConfig drives a conversation node.
type ConversationConfig struct {
	// Prompt is the behavioral instruction for the model while the call sits
	// on this node. Supports {variable} interpolation.
	Prompt string `json:"prompt" yaml:"prompt" mapstructure:"prompt"`

	// Greeting, if set, is spoken once on first entry to the node.
	Greeting string `json:"greeting,omitempty" yaml:"greeting,omitempty" mapstructure:"greeting"`

	// Extract lists the facts the model should pull out of the caller's
	// utterances while on this node.
	Extract []ExtractionSpec `json:"extract,omitempty" yaml:"extract,omitempty" mapstructure:"extract"`
}

// ExtractionSpec describes one fact to extract from conversation.
type ExtractionSpec struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	// Type is one of VarString, VarBoolean, VarNumber.
	Type string `json:"type" yaml:"type" mapstructure:"type"`
}

// AppActionConfig drives an app_action node.
type AppActionConfig struct {
	// App names the integration, e.g. "calendar", "crm", "chat", "webhook".
	App string `json:"app" yaml:"app" mapstructure:"app"`

	// Action names the operation within the app, e.g. "create_event".
	Action string `json:"action" yaml:"action" mapstructure:"action"`

	// FieldMappings maps executor parameter names to templates interpolated
	// against the session variables, e.g. title: "Call with {name}".
	FieldMappings map[string]string `json:"field_mappings,omitempty" yaml:"field_mappings,omitempty" mapstructure:"field_mappings"`
}

// EndCallConfig drives an end_call node.
type EndCallConfig struct {
	// Farewell is spoken non-interruptibly before hanging up.
	// Supports {variable} interpolation.
	Farewell string `json:"farewell" yaml:"farewell" mapstructure:"farewell"`
}

// TransferConfig drives a transfer node.
type TransferConfig struct {
	// Destination is the address the call is redirected to (a phone number or
	// SIP URI; the telephony host interprets it).
	Destination string `json:"destination" yaml:"destination" mapstructure:"destination"`
}
