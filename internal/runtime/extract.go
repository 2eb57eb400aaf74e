package runtime

import (
	"log/slog"

	"github.com/spf13/cast"

	"github.com/evocall/pathway/pkg/domain"
)

// coerceExtracted filters the model's extracted object down to the declared
// specs, coercing each value to its declared type. Fields the model omitted
// stay omitted, so variables accumulate only confidently-known facts, and a
// value that refuses to coerce is dropped with a warning rather than stored
// wrongly typed.
func coerceExtracted(specs []domain.ExtractionSpec, extracted map[string]any, logger *slog.Logger) map[string]any {
	if len(specs) == 0 || len(extracted) == 0 {
		return nil
	}

	out := make(map[string]any)
	for _, spec := range specs {
		raw, ok := extracted[spec.Name]
		if !ok || raw == nil {
			continue
		}

		var (
			val any
			err error
		)
		switch spec.Type {
		case domain.VarBoolean:
			val, err = cast.ToBoolE(raw)
		case domain.VarNumber:
			val, err = cast.ToFloat64E(raw)
		default:
			val, err = cast.ToStringE(raw)
		}
		if err != nil {
			logger.Warn("extracted value does not match declared type; dropped",
				"variable", spec.Name, "type", spec.Type, "value", raw)
			continue
		}
		out[spec.Name] = val
	}
	return out
}
