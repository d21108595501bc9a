package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
	"github.com/YuminosukeSato/lgbm2pmml/pkg/log"
	"github.com/YuminosukeSato/lgbm2pmml/sklearn/lightgbm"
)

// DefaultTargetName is used when no target name is configured.
const DefaultTargetName = "target"

// NameResolver maps a derived column name to the name exposed in the
// document. Implementations return name unchanged when they do not know it.
type NameResolver interface {
	Resolve(name string, derived []string) string
}

// NameResolverFunc adapts a function to NameResolver.
type NameResolverFunc func(name string, derived []string) string

// Resolve calls f.
func (f NameResolverFunc) Resolve(name string, derived []string) string {
	return f(name, derived)
}

// IdentityResolver returns every name unchanged. It is the default, since the
// feature names of a dump are the caller's own column names.
type IdentityResolver struct{}

// Resolve implements NameResolver.
func (IdentityResolver) Resolve(name string, _ []string) string {
	return name
}

// GeneratedNameResolver maps LightGBM's generated feature names "f<N>" to
// derived[N]. Any other name, or an index outside derived, passes through.
// Install it with WithResolver when the derived names still carry the
// placeholders LightGBM writes for unnamed columns.
type GeneratedNameResolver struct{}

// Resolve implements NameResolver.
func (GeneratedNameResolver) Resolve(name string, derived []string) string {
	if len(name) < 2 || name[0] != 'f' {
		return name
	}
	digits := name[1:]
	if strings.TrimLeft(digits, "0123456789") != "" {
		return name
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx >= len(derived) {
		return name
	}
	return derived[idx]
}

// HeaderInfo carries the optional document header attributes.
type HeaderInfo struct {
	Copyright   string
	Description string
	// Timestamp is written verbatim; empty omits the element.
	Timestamp string
}

// Context is the immutable input shared by every stage of one export.
// Build it with NewContext; stages only read from it.
type Context struct {
	// DerivedNames are indexed by split feature index.
	DerivedNames []string
	// FeatureNames populate every mining schema and the data dictionary.
	FeatureNames []string
	TargetName   string
	// ClassLabels are in class-index order. Empty means "0".."K-1".
	ClassLabels []string
	Resolver    NameResolver
	// Workers > 1 translates trees concurrently.
	Workers int
	// Sigmoid is the binary combiner coefficient.
	Sigmoid float64
	Header  HeaderInfo
	Logger  log.Logger

	warn func(error)
}

// Option configures a Context.
type Option func(*Context)

// WithDerivedNames sets the names looked up by split feature index.
func WithDerivedNames(names []string) Option {
	return func(c *Context) { c.DerivedNames = append([]string(nil), names...) }
}

// WithFeatureNames sets the raw input feature names.
func WithFeatureNames(names []string) Option {
	return func(c *Context) { c.FeatureNames = append([]string(nil), names...) }
}

// WithTargetName sets the target field name.
func WithTargetName(name string) Option {
	return func(c *Context) { c.TargetName = name }
}

// WithClassLabels sets the class labels in class-index order.
func WithClassLabels(labels []string) Option {
	return func(c *Context) { c.ClassLabels = append([]string(nil), labels...) }
}

// WithResolver replaces the name resolver.
func WithResolver(r NameResolver) Option {
	return func(c *Context) { c.Resolver = r }
}

// WithWorkers sets how many goroutines translate trees.
func WithWorkers(n int) Option {
	return func(c *Context) { c.Workers = n }
}

// WithHeader sets the document header attributes.
func WithHeader(h HeaderInfo) Option {
	return func(c *Context) { c.Header = h }
}

// WithLogger sets the logger used by Export. Unless WithWarningHandler is
// also given, export warnings such as ThresholdPrecisionWarning are logged
// on l at warn level instead of going to the process-wide handler.
func WithLogger(l log.Logger) Option {
	return func(c *Context) { c.Logger = l }
}

// WithWarningHandler sends export warnings to fn.
func WithWarningHandler(fn func(w error)) Option {
	return func(c *Context) { c.warn = fn }
}

// NewContext builds the export context for model. Unset names default to the
// model's feature names, or "Column_<i>" when the dump carries none. Every
// derived name must resolve to one of the feature names: splits can only
// reference fields the document declares.
func NewContext(model *lightgbm.Model, opts ...Option) (*Context, error) {
	if model == nil {
		return nil, errors.NewValidationError("model", "must not be nil", nil)
	}
	c := &Context{
		TargetName: DefaultTargetName,
		Resolver:   IdentityResolver{},
		Workers:    1,
		Sigmoid:    model.Sigmoid,
	}
	for _, opt := range opts {
		opt(c)
	}

	if len(c.FeatureNames) == 0 {
		c.FeatureNames = defaultFeatureNames(model)
	}
	if len(c.DerivedNames) == 0 {
		c.DerivedNames = append([]string(nil), c.FeatureNames...)
	}
	if c.Resolver == nil {
		c.Resolver = IdentityResolver{}
	}
	if c.warn == nil && c.Logger != nil {
		c.warn = func(w error) { c.Logger.Warn("export warning", w) }
	}
	if c.warn == nil {
		c.warn = errors.Warn
	}
	if c.Logger == nil {
		c.Logger = log.GetLogger()
	}

	if len(c.FeatureNames) == 0 {
		return nil, errors.WithStack(errors.ErrNoFeatures)
	}
	if c.TargetName == "" {
		return nil, errors.NewValidationError("target", "must not be empty", c.TargetName)
	}
	if c.Workers < 0 {
		return nil, errors.NewValidationError("workers", "must not be negative", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if err := checkUnique("feature_names", c.FeatureNames); err != nil {
		return nil, err
	}
	if err := checkUnique("class_labels", c.ClassLabels); err != nil {
		return nil, err
	}
	for _, name := range c.FeatureNames {
		if name == c.TargetName {
			return nil, errors.NewValidationError("target", "collides with a feature name", name)
		}
	}
	if err := c.checkDerivedNames(); err != nil {
		return nil, err
	}
	return c, nil
}

// Labels returns the class labels for kind: the configured ones when their
// count matches, "0".."K-1" when none are configured.
func (c *Context) Labels(kind lightgbm.Kind) ([]string, error) {
	if !lightgbm.IsClassifier(kind) {
		return nil, nil
	}
	k := kind.NumClasses()
	if len(c.ClassLabels) == 0 {
		labels := make([]string, k)
		for i := range labels {
			labels[i] = strconv.Itoa(i)
		}
		return labels, nil
	}
	if len(c.ClassLabels) != k {
		return nil, errors.NewValidationError("class_labels",
			fmt.Sprintf("model has %d classes", k), len(c.ClassLabels))
	}
	return c.ClassLabels, nil
}

func (c *Context) warning(w error) {
	if c.warn == nil {
		errors.Warn(w)
		return
	}
	c.warn(w)
}

func (c *Context) resolve(name string) string {
	return c.Resolver.Resolve(name, c.DerivedNames)
}

// checkDerivedNames rejects derived names that resolve to a field missing
// from FeatureNames. No TransformationDictionary is written, so such a field
// would be declared nowhere in the document.
func (c *Context) checkDerivedNames() error {
	declared := make(map[string]struct{}, len(c.FeatureNames))
	for _, n := range c.FeatureNames {
		declared[n] = struct{}{}
	}
	for i, d := range c.DerivedNames {
		field := c.resolve(d)
		if _, ok := declared[field]; !ok {
			return errors.NewValidationError("derived_names",
				fmt.Sprintf("derived name %d (%q) resolves to %q, which is not a feature name", i, d, field), c.DerivedNames)
		}
	}
	return nil
}

func defaultFeatureNames(model *lightgbm.Model) []string {
	if len(model.FeatureNames) > 0 {
		return append([]string(nil), model.FeatureNames...)
	}
	names := make([]string, model.NumFeatures())
	for i := range names {
		names[i] = fmt.Sprintf("Column_%d", i)
	}
	return names
}

func checkUnique(param string, names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			return errors.NewValidationError(param, "duplicate name", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}
