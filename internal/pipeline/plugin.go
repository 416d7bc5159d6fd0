package pipeline

import (
	"context"

	"github.com/bethropolis/logprefix/internal/diag"
	"github.com/bethropolis/logprefix/internal/transform"
)

// PluginName identifies the plugin in build pipelines.
const PluginName = "loglevel-browser-prefix"

// PluginOptions configures a Plugin.
type PluginOptions struct {
	Include   []string // nil means DefaultInclude
	Exclude   []string // nil means DefaultExclude
	Transform transform.Config
	Policy    transform.ReceiverPolicy // nil means the heuristic
	Warner    diag.Warner
}

// Plugin is the build pipeline stage: a file filter in front of the
// transformer.
type Plugin struct {
	filter      *Filter
	transformer *transform.Transformer
}

// NewPlugin creates a plugin.
func NewPlugin(opts PluginOptions) (*Plugin, error) {
	include, exclude := opts.Include, opts.Exclude
	if include == nil {
		include = DefaultInclude
	}
	if exclude == nil {
		exclude = DefaultExclude
	}
	filter, err := NewFilter(include, exclude)
	if err != nil {
		return nil, err
	}
	return &Plugin{
		filter: filter,
		transformer: transform.New(opts.Transform,
			transform.WithWarner(opts.Warner),
			transform.WithReceiverPolicy(opts.Policy)),
	}, nil
}

// Name returns PluginName.
func (p *Plugin) Name() string { return PluginName }

// Filter returns the id filter.
func (p *Plugin) Filter() *Filter { return p.filter }

// Transform rewrites code when id passes the filter. It returns nil for
// filtered and unchanged units alike.
func (p *Plugin) Transform(code, id string) *transform.Result {
	return p.TransformContext(context.Background(), code, id)
}

// TransformContext is Transform with a context for the parser.
func (p *Plugin) TransformContext(ctx context.Context, code, id string) *transform.Result {
	if !p.filter.Match(id) {
		return nil
	}
	return p.transformer.TransformContext(ctx, code, id)
}
