package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	apperrors "github.com/javaDevJT/auth-hooker/internal/errors"
	"github.com/javaDevJT/auth-hooker/internal/ports"
)

// ClaimRuleEngineOptions groups dependencies for ClaimRuleEngine.
type ClaimRuleEngineOptions struct {
	Mappings ports.ClaimMappingSource // Required: active mappings per provider
	Logger   *slog.Logger             // Optional: structured logger
}

// ClaimRuleEngine applies tenant-authored claim mappings to raw claim maps.
type ClaimRuleEngine struct {
	mappings ports.ClaimMappingSource
	logger   *slog.Logger
}

// NewClaimRuleEngine constructs a new ClaimRuleEngine.
func NewClaimRuleEngine(opts ClaimRuleEngineOptions) (*ClaimRuleEngine, error) {
	if opts.Mappings == nil {
		return nil, errors.New("ClaimMappingSource is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimRuleEngine{
		mappings: opts.Mappings,
		logger:   logger.With("component", "claim_rule_engine"),
	}, nil
}

// ApplyAll runs the provider's active mappings in descending priority over a copy of claims,
// so the highest priority mapping that resolves a value owns its target field. A mapping that
// fails is logged and skipped. Failing to load the mappings is returned.
func (e *ClaimRuleEngine) ApplyAll(ctx context.Context, claims map[string]any, providerID string) (map[string]any, error) {
	if len(claims) == 0 {
		return map[string]any{}, nil
	}

	mappings, err := e.mappings.ListActiveByProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("load claim mappings for provider %s: %w", providerID, err)
	}
	out := cloneMap(claims)
	if len(mappings) == 0 {
		return out, nil
	}

	ordered := append([]domainauth.ClaimMapping(nil), mappings...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority > ordered[j].Priority })

	// A target written by a higher priority mapping is not overwritten by a lower one.
	written := make(map[string]struct{}, len(ordered))
	for _, m := range ordered {
		if _, taken := written[m.TargetField]; taken {
			e.logger.DebugContext(ctx, "claim mapping shadowed by higher priority mapping",
				"provider_id", providerID, "mapping_id", m.ID, "target_field", m.TargetField)
			continue
		}
		next, wrote, err := e.apply(out, m)
		if err != nil {
			e.logger.WarnContext(ctx, "claim mapping skipped",
				"provider_id", providerID,
				"mapping_id", m.ID,
				"source_path", m.SourcePath,
				"error", err,
			)
			continue
		}
		if wrote {
			written[m.TargetField] = struct{}{}
		}
		out = next
	}
	return out, nil
}

// Apply runs one mapping. When the source value is absent the claims are returned unchanged.
// The input map is never modified.
func (e *ClaimRuleEngine) Apply(claims map[string]any, m domainauth.ClaimMapping) (map[string]any, error) {
	out, _, err := e.apply(claims, m)
	return out, err
}

// apply also reports whether the target was written.
func (e *ClaimRuleEngine) apply(claims map[string]any, m domainauth.ClaimMapping) (map[string]any, bool, error) {
	value, err := extractPath(claims, m.SourcePath)
	if err != nil {
		return claims, false, err
	}
	if value == nil {
		return claims, false, nil
	}

	value, err = applyTransform(value, m.Transform)
	if err != nil {
		return claims, false, err
	}
	out, err := setNestedField(claims, m.TargetField, value)
	if err != nil {
		return claims, false, err
	}
	return out, true, nil
}

// isStructuredPath reports whether path needs expression evaluation rather than a key lookup.
func isStructuredPath(path string) bool {
	return strings.ContainsAny(path, "$[.")
}

var bracketKey = regexp.MustCompile(`\[\s*'([^']*)'\s*\]|\[\s*"([^"]*)"\s*\]`)

// toJMESPath rewrites a JSONPath-style expression ($.a.b, $['a'][0]) into JMESPath.
func toJMESPath(path string) string {
	expr := strings.TrimSpace(path)
	expr = strings.TrimPrefix(expr, "$")
	expr = bracketKey.ReplaceAllStringFunc(expr, func(m string) string {
		sub := bracketKey.FindStringSubmatch(m)
		key := sub[1]
		if key == "" {
			key = sub[2]
		}
		return `."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
	})
	return strings.TrimPrefix(expr, ".")
}

func extractPath(claims map[string]any, path string) (any, error) {
	if strings.TrimSpace(path) == "" {
		return nil, apperrors.InvalidArgumentField("source_path", "source path cannot be empty")
	}
	if !isStructuredPath(path) {
		return claims[path], nil
	}
	v, err := jmespath.Search(toJMESPath(path), claims)
	if err != nil {
		return nil, fmt.Errorf("evaluate source path %q: %w", path, err)
	}
	return v, nil
}

// ValidateSourcePath checks a mapping source path before it is stored.
func ValidateSourcePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.InvalidArgumentField("source_path", "source path cannot be empty")
	}
	if !isStructuredPath(path) {
		return nil
	}
	if _, err := jmespath.Compile(toJMESPath(path)); err != nil {
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeInvalidArgument,
			Message: fmt.Sprintf("invalid source path %q", path),
			Field:   "source_path",
			Cause:   err,
		}
	}
	return nil
}

// ValidateTargetField rejects blank targets and empty dotted segments.
func ValidateTargetField(target string) error {
	if strings.TrimSpace(target) == "" {
		return apperrors.InvalidArgumentField("target_field", "target field cannot be empty")
	}
	for _, seg := range strings.Split(target, ".") {
		if strings.TrimSpace(seg) == "" {
			return apperrors.InvalidArgumentField("target_field", "target field has an empty segment")
		}
	}
	return nil
}

// ValidateTransform checks that a configured regex compiles.
func ValidateTransform(t domainauth.Transform) error {
	if t.Regex == nil {
		return nil
	}
	if _, err := regexp.Compile(*t.Regex); err != nil {
		return &apperrors.AppError{
			Code:    apperrors.ErrCodeInvalidArgument,
			Message: "invalid transform regex",
			Field:   "transform.regex",
			Cause:   err,
		}
	}
	return nil
}

// applyTransform runs lowercase, uppercase, trim, regex replace, then default substitution.
// When a string step is configured, non-nil values are rendered as strings first.
func applyTransform(value any, t domainauth.Transform) (any, error) {
	if value != nil && hasStringStep(t) {
		s := stringify(value)
		if t.ToLowerCase {
			s = strings.ToLower(s)
		}
		if t.ToUpperCase {
			s = strings.ToUpper(s)
		}
		if t.Trim {
			s = strings.TrimSpace(s)
		}
		if t.Regex != nil {
			re, err := regexp.Compile(*t.Regex)
			if err != nil {
				return nil, fmt.Errorf("compile transform regex: %w", err)
			}
			replacement := ""
			if t.Replacement != nil {
				replacement = *t.Replacement
			}
			s = re.ReplaceAllString(s, replacement)
		}
		value = s
	}

	if t.Default != nil {
		if s, ok := value.(string); value == nil || (ok && s == "") {
			value = t.Default
		}
	}
	return value, nil
}

func hasStringStep(t domainauth.Transform) bool {
	return t.ToLowerCase || t.ToUpperCase || t.Trim || t.Regex != nil
}

// setNestedField writes value at a dot-separated target, creating intermediate maps.
// A non-map intermediate is replaced. Maps along the path are copied so the input stays intact.
func setNestedField(claims map[string]any, target string, value any) (map[string]any, error) {
	if err := ValidateTargetField(target); err != nil {
		return claims, err
	}
	parts := strings.Split(target, ".")

	root := cloneMap(claims)
	cur := root
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if ok {
			next = cloneMap(next)
		} else {
			next = map[string]any{}
		}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
	return root, nil
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
