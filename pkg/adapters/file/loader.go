package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/evocall/pathway/internal/logging"
	"github.com/evocall/pathway/pkg/domain"
)

// Loader implements ports.PathwayLoader over pathway documents on disk:
// one YAML (or JSON) file per pathway, named <id>.yaml.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// Option configures the Loader.
type Option func(*Loader)

// WithLogger sets the logger used to report validation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var extensions = []string{".yaml", ".yml", ".json"}

// Load reads, parses, and validates the pathway document for the given id.
// Non-fatal validation findings (dangling edges, orphan nodes) are logged at
// warning level; only an unresolvable entry point fails the load.
func (l *Loader) Load(ctx context.Context, pathwayID string) (*domain.Pathway, error) {
	var (
		data []byte
		err  error
	)
	for _, ext := range extensions {
		data, err = os.ReadFile(filepath.Join(l.dir, pathwayID+ext))
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("pathway %s not found in %s: %w", pathwayID, l.dir, err)
	}

	p, warnings, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pathway %s: %w", pathwayID, err)
	}
	if p.ID == "" {
		p.ID = pathwayID
	}
	for _, w := range warnings {
		l.logger.Warn("pathway validation", "pathway", pathwayID, "code", w.Code, "node", w.NodeID, "detail", w.Detail)
	}
	return p, nil
}

// rawNode accepts both layouts: the kind-specific key (conversation:, ...)
// or a generic config: block decoded by kind.
type rawNode struct {
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"`
	Name  string `yaml:"name"`
	Start bool   `yaml:"start"`

	Config map[string]any `yaml:"config"`

	Conversation *domain.ConversationConfig `yaml:"conversation"`
	AppAction    *domain.AppActionConfig    `yaml:"app_action"`
	EndCall      *domain.EndCallConfig      `yaml:"end_call"`
	Transfer     *domain.TransferConfig     `yaml:"transfer"`
}

type document struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	EntryPoint string        `yaml:"entry_point"`
	Nodes      []rawNode     `yaml:"nodes"`
	Edges      []domain.Edge `yaml:"edges"`
}

// Parse decodes a pathway document and validates it. YAML being a superset
// of JSON, both formats go through the same decoder.
func Parse(data []byte) (*domain.Pathway, []domain.Warning, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse pathway document: %w", err)
	}

	p := &domain.Pathway{
		ID:         doc.ID,
		Name:       doc.Name,
		EntryPoint: doc.EntryPoint,
		Edges:      doc.Edges,
		Nodes:      make([]domain.Node, 0, len(doc.Nodes)),
	}

	for _, rn := range doc.Nodes {
		node := domain.Node{
			ID:           rn.ID,
			Kind:         rn.Kind,
			Name:         rn.Name,
			Start:        rn.Start,
			Conversation: rn.Conversation,
			AppAction:    rn.AppAction,
			EndCall:      rn.EndCall,
			Transfer:     rn.Transfer,
		}
		if rn.Config != nil {
			if err := decodeConfig(&node, rn.Config); err != nil {
				return nil, nil, fmt.Errorf("node %s: %w", rn.ID, err)
			}
		}
		p.Nodes = append(p.Nodes, node)
	}

	warnings, err := p.Validate()
	if err != nil {
		return nil, warnings, err
	}
	return p, warnings, nil
}

// decodeConfig maps a generic config block onto the node's kind-specific
// struct. Weak typing tolerates the usual YAML looseness (numbers vs
// strings) in hand-written documents.
func decodeConfig(node *domain.Node, config map[string]any) error {
	decode := func(target any) error {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           target,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return err
		}
		if err := dec.Decode(config); err != nil {
			return fmt.Errorf("decode %s config: %w", node.Kind, err)
		}
		return nil
	}

	switch node.Kind {
	case domain.KindConversation:
		node.Conversation = &domain.ConversationConfig{}
		return decode(node.Conversation)
	case domain.KindAppAction:
		node.AppAction = &domain.AppActionConfig{}
		return decode(node.AppAction)
	case domain.KindEndCall:
		node.EndCall = &domain.EndCallConfig{}
		return decode(node.EndCall)
	case domain.KindTransfer:
		node.Transfer = &domain.TransferConfig{}
		return decode(node.Transfer)
	default:
		return fmt.Errorf("unknown node kind %q", node.Kind)
	}
}
