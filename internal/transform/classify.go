package transform

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/bethropolis/logprefix/internal/syntax"
)

// tree-sitter node kinds shared by the JavaScript and TypeScript grammars.
const (
	nodeCall               = "call_expression"
	nodeMember             = "member_expression"
	nodeIdentifier         = "identifier"
	nodePropertyIdentifier = "property_identifier"
	nodeArguments          = "arguments"
	nodeComment            = "comment"
	nodeParenthesized      = "parenthesized_expression"
)

// CallSite is a matched logger call.
type CallSite struct {
	Call      *sitter.Node // call_expression
	Callee    *sitter.Node // member_expression, e.g. log.debug
	Receiver  *sitter.Node // object of the member expression
	Method    string
	Arguments []*sitter.Node // argument expressions, comments excluded
}

// Classifier recognizes loggable calls: a method call whose property is a
// plain identifier in the level set, on a receiver the policy accepts.
type Classifier struct {
	levels LevelSet
	policy ReceiverPolicy
}

// NewClassifier creates a classifier. A nil policy means HeuristicPolicy.
func NewClassifier(levels LevelSet, policy ReceiverPolicy) *Classifier {
	if policy == nil {
		policy = HeuristicPolicy{}
	}
	return &Classifier{levels: levels, policy: policy}
}

// Classify reports whether n is a loggable call.
func (c *Classifier) Classify(n *sitter.Node, src []byte) bool {
	_, ok := c.Match(n, src)
	return ok
}

// Match classifies n and, on success, returns its call site.
func (c *Classifier) Match(n *sitter.Node, src []byte) (CallSite, bool) {
	if n == nil || n.Type() != nodeCall {
		return CallSite{}, false
	}
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != nodeMember {
		return CallSite{}, false
	}
	// Computed access is a subscript_expression and never reaches here; this
	// also rejects private #names.
	prop := callee.ChildByFieldName("property")
	if prop == nil || prop.Type() != nodePropertyIdentifier {
		return CallSite{}, false
	}
	method := syntax.Text(prop, src)
	if !c.levels.Has(method) {
		return CallSite{}, false
	}
	receiver := callee.ChildByFieldName("object")
	if receiver == nil {
		return CallSite{}, false
	}
	// (log).debug names the same receiver as log.debug.
	if inner := unparenthesize(receiver); inner.Type() == nodeIdentifier && !c.policy.Accept(syntax.Text(inner, src)) {
		return CallSite{}, false
	}
	// Tagged templates (log.debug`x`) carry a template_string instead.
	args := n.ChildByFieldName("arguments")
	if args == nil || args.Type() != nodeArguments {
		return CallSite{}, false
	}
	return CallSite{
		Call:      n,
		Callee:    callee,
		Receiver:  receiver,
		Method:    method,
		Arguments: argumentNodes(args),
	}, true
}

func unparenthesize(n *sitter.Node) *sitter.Node {
	for n.Type() == nodeParenthesized {
		var inner *sitter.Node
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if child := n.NamedChild(i); child != nil && child.Type() != nodeComment {
				inner = child
				break
			}
		}
		if inner == nil {
			return n
		}
		n = inner
	}
	return n
}

func argumentNodes(args *sitter.Node) []*sitter.Node {
	count := int(args.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := args.NamedChild(i)
		if child == nil || child.Type() == nodeComment {
			continue
		}
		out = append(out, child)
	}
	return out
}
